package support_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
)

var Module = fx.Provide(
	provideSupportRepo, provideSupportService,
	provideMessageRepo, provideMessageService,
)

func provideSupportRepo(db *gorm.DB) repositories.SupportRepository {
	return repositories.NewSupportRepository(db)
}

func provideSupportService(
	repo repositories.SupportRepository,
	users repositories.UserRepository,
	mail services.IMailService,
	logger *zap.Logger,
) services.SupportServiceInterface {
	return services.NewSupportService(repo, users, mail, logger)
}

func provideMessageRepo(db *gorm.DB) repositories.MessageRepository {
	return repositories.NewMessageRepository(db)
}

func provideMessageService(repo repositories.MessageRepository, users repositories.UserRepository) services.MessageService {
	return services.NewMessageService(repo, users)
}
