package upload_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(
		provideUploadRepo,
		services.NewUploadService,
		provideUploadServiceInterface,
		provideSweeper,
	),
	fx.Invoke(startSweeper),
)

func provideUploadRepo(db *gorm.DB) repositories.UploadRepository {
	return repositories.NewUploadRepository(db)
}

func provideUploadServiceInterface(svc *services.UploadService) services.UploadServiceInterface {
	return svc
}

func provideSweeper(svc *services.UploadService, logger *zap.Logger) *services.UploadSweeper {
	return services.NewUploadSweeper(
		svc,
		utils.GetEnvDuration("UPLOAD_SWEEP_INTERVAL", 10*time.Minute),
		utils.GetEnvDuration("UPLOAD_PENDING_GRACE", 30*time.Minute),
		logger,
	)
}

func startSweeper(lc fx.Lifecycle, sweeper *services.UploadSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
