package cache_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bizdesk/internal/infra"
	"bizdesk/internal/services"
	mem "bizdesk/pkg/memcache"
	"bizdesk/pkg/utils"
)

var Module = fx.Provide(provideOrderStore)

// provideOrderStore uses Redis when REDIS_ADDR is set and reachable, and the
// in-process store otherwise.
func provideOrderStore(lc fx.Lifecycle, tokens mem.OrderTokenStore, logger *zap.Logger) services.OrderStore {
	ttl := utils.GetEnvDuration("ORDER_TOKEN_TTL", 24*time.Hour)

	addr := utils.GetEnv("REDIS_ADDR", "")
	if addr == "" {
		logger.Info("order tokens kept in memory")
		return services.NewMemoryOrderStore(tokens, ttl)
	}

	client, err := infra.NewRedisClient(context.Background(), addr, utils.GetEnv("REDIS_PASSWORD", ""))
	if err != nil {
		logger.Warn("redis unavailable, order tokens kept in memory", zap.Error(err))
		return services.NewMemoryOrderStore(tokens, ttl)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	logger.Info("order tokens kept in redis")
	return services.NewRedisOrderStore(client, ttl)
}
