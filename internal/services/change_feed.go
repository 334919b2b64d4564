package services

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const transactionsChannel = "transactions_changed"

// ChangeFeed tells live dashboards that a user's transactions changed.
type ChangeFeed interface {
	Publish(ctx context.Context, userID string) error
	// Subscribe returns a channel that receives a signal after each change for
	// userID. Signals coalesce; a slow reader sees at least one per burst.
	Subscribe(userID string) (<-chan struct{}, func())
}

type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan struct{}]struct{})}
}

func (h *hub) Subscribe(userID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan struct{}]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

func (h *hub) notify(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		signal(ch)
	}
}

func (h *hub) notifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for ch := range set {
			signal(ch)
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

type memoryFeed struct {
	*hub
}

// NewMemoryFeed delivers changes within this process only.
func NewMemoryFeed() ChangeFeed {
	return &memoryFeed{hub: newHub()}
}

func (f *memoryFeed) Publish(_ context.Context, userID string) error {
	f.notify(userID)
	return nil
}

// PgFeed fans Postgres NOTIFY messages out to local subscribers, so every
// instance behind a load balancer sees every write.
type PgFeed struct {
	*hub
	db       *gorm.DB
	listener *pq.Listener
	logger   *zap.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewPgFeed(db *gorm.DB, listener *pq.Listener, logger *zap.Logger) *PgFeed {
	return &PgFeed{
		hub:      newHub(),
		db:       db,
		listener: listener,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (f *PgFeed) Publish(ctx context.Context, userID string) error {
	return f.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", transactionsChannel, userID).Error
}

func (f *PgFeed) Start(context.Context) error {
	if err := f.listener.Listen(transactionsChannel); err != nil {
		return err
	}
	f.wg.Add(1)
	go f.run()
	return nil
}

func (f *PgFeed) Stop(context.Context) error {
	close(f.done)
	f.wg.Wait()
	return f.listener.Close()
}

func (f *PgFeed) run() {
	defer f.wg.Done()
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case n := <-f.listener.Notify:
			if n == nil {
				// connection was re-established; notifications may have been lost
				f.notifyAll()
				continue
			}
			f.notify(n.Extra)
		case <-ping.C:
			if err := f.listener.Ping(); err != nil {
				f.logger.Warn("pg listener ping failed", zap.Error(err))
			}
		case <-f.done:
			return
		}
	}
}
