package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(provideMailService)

func provideMailService(logger *zap.Logger) services.IMailService {
	host := utils.GetEnv("SMTP_HOST", "")
	if host == "" {
		logger.Warn("SMTP_HOST not set, notification mail is only logged")
		return services.NewLogMailService(logger)
	}

	port := utils.GetEnvInt("SMTP_PORT", 587)
	cfg := services.SMTPConfig{
		Host:       host,
		Port:       port,
		Username:   utils.GetEnv("SMTP_USERNAME", ""),
		Password:   utils.GetEnv("SMTP_PASSWORD", ""),
		From:       utils.GetEnv("SMTP_FROM", "no-reply@bizdesk.local"),
		FromName:   utils.GetEnv("SMTP_FROM_NAME", "Bizdesk"),
		UseSSL:     port == 465,
		RequireTLS: utils.GetEnv("SMTP_REQUIRE_TLS", "true") == "true",

		AppName:    utils.GetEnv("APP_NAME", "Bizdesk"),
		AppBaseURL: utils.GetEnv("APP_BASE_URL", "http://localhost:3000"),
	}
	logger.Info("smtp mail enabled", zap.String("host", host), zap.Int("port", port))
	return services.NewSMTPMailService(cfg)
}
