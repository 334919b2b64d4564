package db_fx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"bizdesk/internal/services"
)

func TestProvideChangeFeed_MemoryMode(t *testing.T) {
	t.Setenv("CHANGE_FEED", "memory")
	t.Setenv("POSTGRES_URL", "postgres://localhost/bizdesk")

	lc := fxtest.NewLifecycle(t)
	feed := provideChangeFeed(lc, nil, zap.NewNop())
	lc.RequireStart()
	defer lc.RequireStop()

	_, isPg := feed.(*services.PgFeed)
	assert.False(t, isPg)

	ch, cancel := feed.Subscribe("abc")
	defer cancel()
	require.NoError(t, feed.Publish(context.Background(), "abc"))
	assert.Len(t, ch, 1)
}

func TestProvideChangeFeed_NoListenDSN(t *testing.T) {
	t.Setenv("CHANGE_FEED", "")
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("POSTGRES_LISTEN_URL", "")

	feed := provideChangeFeed(fxtest.NewLifecycle(t), nil, zap.NewNop())
	_, isPg := feed.(*services.PgFeed)
	assert.False(t, isPg)
}
