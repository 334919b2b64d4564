package account_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bizdesk/internal/infra"
	"bizdesk/internal/repositories"
	"bizdesk/internal/services"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(
	provideIdentity, provideTokenVerifier, provideAccountService)

// provideIdentity picks Firebase when FIREBASE_PROJECT_ID is set and falls
// back to locally stored credentials.
func provideIdentity(users repositories.UserRepository, logger *zap.Logger) services.IdentityProvider {
	projectID := utils.GetEnv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		logger.Info("identity: local accounts")
		return services.NewLocalIdentity(users)
	}

	client, err := infra.NewFirebaseAuth(context.Background(), projectID, utils.GetEnv("FIREBASE_CREDENTIALS_FILE", ""))
	if err != nil {
		logger.Error("identity: firebase init failed, using local accounts", zap.Error(err))
		return services.NewLocalIdentity(users)
	}
	logger.Info("identity: firebase", zap.String("project", projectID))
	return services.NewFirebaseIdentity(client, users, logger)
}

func provideTokenVerifier(identity services.IdentityProvider) middleware.TokenVerifier {
	return identity
}

func provideAccountService(users repositories.UserRepository, identity services.IdentityProvider, logger *zap.Logger) services.AccountServiceInterface {
	return services.NewAccountService(users, identity, logger)
}
