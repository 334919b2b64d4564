package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bizdesk/internal/models/db_models"
)

func InitPostgresql(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("POSTGRES_URL is not set")
	}

	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := migrate(connectionPool); err != nil {
		return nil, err
	}

	logger.Info("postgres connected")
	return connectionPool, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&db_models.User{},
		&db_models.Transaction{},
		&db_models.Upload{},
		&db_models.SupportTicket{},
		&db_models.TicketFeedback{},
		&db_models.TicketCounter{},
		&db_models.UserMessage{},
		&db_models.AdminMessage{},
		&db_models.PaymentEvent{},
	)
}

func ClosePostgresql(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("get database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close postgres", zap.Error(err))
		return
	}
	logger.Info("postgres connection closed")
}
