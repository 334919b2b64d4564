package db_fx

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdesk/internal/infra"
	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(
	provideDB,
	provideChangeFeed,
	provideUserRepo,
	provideTransactionRepo,
)

func provideDB(lc fx.Lifecycle, logger *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(utils.GetEnv("POSTGRES_URL", ""), logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			infra.ClosePostgresql(db, logger)
			return nil
		},
	})
	return db, nil
}

// provideChangeFeed listens on Postgres NOTIFY so every instance sees every
// transaction write. CHANGE_FEED=memory keeps signals in-process for single
// instance deployments behind a pooler that cannot hold LISTEN sessions.
func provideChangeFeed(lc fx.Lifecycle, db *gorm.DB, logger *zap.Logger) services.ChangeFeed {
	listenDSN := utils.GetEnv("POSTGRES_LISTEN_URL", utils.GetEnv("POSTGRES_URL", ""))
	if strings.EqualFold(utils.GetEnv("CHANGE_FEED", "postgres"), "memory") || listenDSN == "" {
		logger.Info("change feed is in-process only")
		return services.NewMemoryFeed()
	}
	listener := infra.NewPgListener(listenDSN, logger)
	feed := services.NewPgFeed(db, listener, logger)
	lc.Append(fx.Hook{OnStart: feed.Start, OnStop: feed.Stop})
	return feed
}

func provideUserRepo(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func provideTransactionRepo(db *gorm.DB) repositories.TransactionRepository {
	return repositories.NewTransactionRepository(db)
}
