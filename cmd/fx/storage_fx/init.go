package storage_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bizdesk/internal/infra"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(provideObjectStorage)

func provideObjectStorage(logger *zap.Logger) services.ObjectStorage {
	cfg := infra.S3Config{
		Bucket:          utils.GetEnv("S3_BUCKET", ""),
		Region:          utils.GetEnv("S3_REGION", "us-east-1"),
		Endpoint:        utils.GetEnv("S3_ENDPOINT", ""),
		AccessKeyID:     utils.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: utils.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		PublicBaseURL:   utils.GetEnv("S3_PUBLIC_BASE_URL", ""),
	}
	if cfg.Bucket == "" {
		logger.Warn("S3_BUCKET not set, uploads are disabled")
		return services.NewUnconfiguredStorage()
	}

	client, err := infra.NewS3Client(context.Background(), cfg)
	if err != nil {
		logger.Error("s3 client init failed, uploads are disabled", zap.Error(err))
		return services.NewUnconfiguredStorage()
	}
	return services.NewS3Storage(client, cfg.Bucket, cfg.PublicBaseURL)
}
