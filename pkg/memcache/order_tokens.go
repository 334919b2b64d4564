// Package mem keeps short-lived order snapshots in process memory. It backs the
// order token store when no Redis address is configured.
package mem

import (
	"sync"
	"time"
)

type OrderTokenStore interface {
	Set(token string, snapshot []byte, ttl time.Duration)

	// Get returns the snapshot for token if it has not expired. Reads do not
	// consume the token; a reload within the TTL sees the same snapshot.
	Get(token string) ([]byte, bool)

	Delete(token string)
}

type entry struct {
	snapshot  []byte
	expiresAt time.Time
}

type OrderTokens struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewOrderTokens() *OrderTokens {
	return &OrderTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *OrderTokens) Set(token string, snapshot []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	s.data[token] = entry{
		snapshot:  append([]byte(nil), snapshot...),
		expiresAt: s.now().Add(ttl),
	}
}

func (s *OrderTokens) Get(token string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[token]
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return append([]byte(nil), e.snapshot...), true
}

func (s *OrderTokens) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
}

// Len counts live entries.
func (s *OrderTokens) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	now := s.now()
	for _, e := range s.data {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *OrderTokens) purgeExpiredLocked() {
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}
