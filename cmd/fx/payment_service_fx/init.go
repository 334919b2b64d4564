package payment_service_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdesk/internal/infra"
	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(
	provideProcessors,
	providePaymentEventRepo,
	providePaymentService,
	provideWebhookService,
)

// Missing credentials leave a processor unconfigured; calls then fail with a
// configuration error instead of stopping the process.
func provideProcessors(logger *zap.Logger) []services.PaymentProcessor {
	stripe := services.NewStripeProcessor(services.StripeConfig{
		SecretKey:     utils.GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: utils.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	}, logger)
	paypal := services.NewPaypalProcessor(services.PaypalConfig{
		ClientID:     utils.GetEnv("PAYPAL_CLIENT_ID", ""),
		ClientSecret: utils.GetEnv("PAYPAL_CLIENT_SECRET", ""),
		WebhookID:    utils.GetEnv("PAYPAL_WEBHOOK_ID", ""),
		Mode:         utils.GetEnv("PAYPAL_MODE", "sandbox"),
		BrandName:    utils.GetEnv("APP_NAME", "Bizdesk"),
	}, logger)

	for _, p := range []services.PaymentProcessor{stripe, paypal} {
		if !p.Configured() {
			logger.Warn("payment processor not configured", zap.String("processor", string(p.Method())))
		}
	}
	return []services.PaymentProcessor{stripe, paypal}
}

// providePaymentEventRepo writes the webhook audit log to MongoDB when
// MONGO_URI is set and to Postgres otherwise.
func providePaymentEventRepo(lc fx.Lifecycle, db *gorm.DB, logger *zap.Logger) repositories.PaymentEventRepository {
	uri := utils.GetEnv("MONGO_URI", "")
	if uri == "" {
		return repositories.NewPaymentEventRepository(db)
	}

	mdb, err := infra.NewMongoDatabase(context.Background(), uri, utils.GetEnv("MONGO_DATABASE", "bizdesk"))
	if err != nil {
		logger.Warn("mongo unavailable, payment events stored in postgres", zap.Error(err))
		return repositories.NewPaymentEventRepository(db)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return mdb.Client().Disconnect(ctx) },
	})
	return repositories.NewMongoPaymentEventRepository(mdb)
}

func providePaymentService(
	orders services.OrderStore,
	txns repositories.TransactionRepository,
	feed services.ChangeFeed,
	processors []services.PaymentProcessor,
	logger *zap.Logger,
) services.PaymentService {
	cfg := services.PaymentConfig{
		AppBaseURL:      utils.GetEnv("APP_BASE_URL", "http://localhost:3000"),
		DefaultCurrency: utils.GetEnv("DEFAULT_CURRENCY", "USD"),
	}
	return services.NewPaymentService(cfg, orders, txns, feed, logger, processors...)
}

func provideWebhookService(
	events repositories.PaymentEventRepository,
	txns repositories.TransactionRepository,
	feed services.ChangeFeed,
	processors []services.PaymentProcessor,
	logger *zap.Logger,
) services.WebhookService {
	return services.NewWebhookService(events, txns, feed, logger, processors...)
}
