package infra

import (
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// NewPgListener opens a LISTEN connection separate from the gorm pool.
func NewPgListener(dsn string, logger *zap.Logger) *pq.Listener {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("pg listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	}
	return pq.NewListener(dsn, 2*time.Second, time.Minute, report)
}
