package memcache_fx

import (
	"go.uber.org/fx"

	mem "bizdesk/pkg/memcache"
)

var Module = fx.Provide(provideOrderTokens)

func provideOrderTokens() mem.OrderTokenStore {
	return mem.NewOrderTokens()
}
