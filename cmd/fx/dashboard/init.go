package dashboard

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
)

var Module = fx.Provide(
	provideDashboardRepo, provideDashboardService,
)

func provideDashboardRepo(db *gorm.DB) repositories.DashboardRepository {
	return repositories.NewDashboardRepository(db)
}

func provideDashboardService(
	dashboardRepo repositories.DashboardRepository,
	txns repositories.TransactionRepository,
	feed services.ChangeFeed,
	logger *zap.Logger,
) services.DashboardService {
	return services.NewDashboardService(dashboardRepo, txns, feed, logger)
}
