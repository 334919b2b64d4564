package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type sweeper interface {
	Sweep(ctx context.Context, grace time.Duration) (SweepResult, error)
}

// UploadSweeper runs Sweep on a ticker until Stop.
type UploadSweeper struct {
	svc      sweeper
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUploadSweeper(svc *UploadService, interval, grace time.Duration, logger *zap.Logger) *UploadSweeper {
	return &UploadSweeper{svc: svc, interval: interval, grace: grace, logger: logger}
}

func (u *UploadSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.wg.Add(1)
	go u.run(ctx)
}

func (u *UploadSweeper) Stop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wg.Wait()
}

func (u *UploadSweeper) run(ctx context.Context) {
	defer u.wg.Done()
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := u.svc.Sweep(ctx, u.grace)
			if err != nil {
				u.logger.Warn("upload sweep failed", zap.Error(err))
				continue
			}
			if res.Pending > 0 || res.Deleting > 0 {
				u.logger.Info("upload sweep",
					zap.Int("pending_removed", res.Pending),
					zap.Int("deleting_removed", res.Deleting))
			}
		}
	}
}
