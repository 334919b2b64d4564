package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	mem "bizdesk/pkg/memcache"
)

// OrderSnapshot is the order context captured at checkout and read back when
// the browser returns from the processor.
type OrderSnapshot struct {
	Token          string           `json:"token"`
	UserID         string           `json:"userId"`
	Email          string           `json:"email,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	PackageKey     string           `json:"packageKey"`
	PackageTitle   string           `json:"packageTitle,omitempty"`
	Country        string           `json:"country,omitempty"`
	Company        string           `json:"company,omitempty"`
	PaymentMethod  string           `json:"paymentMethod"`
	ProcessorRef   string           `json:"processorRef,omitempty"`
	AddOns         datatypes.JSON   `json:"addOns,omitempty"`
	Features       datatypes.JSON   `json:"features,omitempty"`
	Breakdown      datatypes.JSON   `json:"breakdown,omitempty"`
	CouponCode     string           `json:"couponCode,omitempty"`
	CouponPercent  *decimal.Decimal `json:"couponPercent,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`
	// SavedAt is the unix-millis nonce that makes the idempotency key stable.
	SavedAt int64 `json:"savedAt,omitempty"`
}

type OrderStore interface {
	// Save stores snap under a fresh token and returns the token.
	Save(ctx context.Context, snap *OrderSnapshot) (string, error)
	// Update overwrites the snapshot stored under snap.Token.
	Update(ctx context.Context, snap *OrderSnapshot) error
	// Load returns nil, nil for unknown or expired tokens.
	Load(ctx context.Context, token string) (*OrderSnapshot, error)
}

const orderKeyPrefix = "order:"

type redisOrderStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOrderStore(client *redis.Client, ttl time.Duration) OrderStore {
	return &redisOrderStore{client: client, ttl: ttl}
}

func (s *redisOrderStore) Save(ctx context.Context, snap *OrderSnapshot) (string, error) {
	snap.Token = uuid.NewString()
	return snap.Token, s.Update(ctx, snap)
}

func (s *redisOrderStore) Update(ctx context.Context, snap *OrderSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, orderKeyPrefix+snap.Token, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store order token: %w", err)
	}
	return nil
}

func (s *redisOrderStore) Load(ctx context.Context, token string) (*OrderSnapshot, error) {
	raw, err := s.client.Get(ctx, orderKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load order token: %w", err)
	}
	return decodeSnapshot(raw)
}

type memoryOrderStore struct {
	tokens mem.OrderTokenStore
	ttl    time.Duration
}

func NewMemoryOrderStore(tokens mem.OrderTokenStore, ttl time.Duration) OrderStore {
	return &memoryOrderStore{tokens: tokens, ttl: ttl}
}

func (s *memoryOrderStore) Save(ctx context.Context, snap *OrderSnapshot) (string, error) {
	snap.Token = uuid.NewString()
	return snap.Token, s.Update(ctx, snap)
}

func (s *memoryOrderStore) Update(_ context.Context, snap *OrderSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.tokens.Set(snap.Token, raw, s.ttl)
	return nil
}

func (s *memoryOrderStore) Load(_ context.Context, token string) (*OrderSnapshot, error) {
	raw, ok := s.tokens.Get(token)
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(raw)
}

func decodeSnapshot(raw []byte) (*OrderSnapshot, error) {
	var snap OrderSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode order snapshot: %w", err)
	}
	return &snap, nil
}
