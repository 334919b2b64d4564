package logger_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bizdesk/pkg/utils"
)

var Module = fx.Provide(provideLogger)

func provideLogger() (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if utils.GetEnv("APP_ENV", "development") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
