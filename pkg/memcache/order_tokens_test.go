package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderTokens_GetDoesNotConsume(t *testing.T) {
	store := NewOrderTokens()
	store.Set("tok", []byte(`{"userId":"abc"}`), time.Minute)

	first, ok := store.Get("tok")
	assert.True(t, ok)
	second, ok := store.Get("tok")
	assert.True(t, ok)
	assert.Equal(t, first, second)
}

func TestOrderTokens_Expiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewOrderTokens()
	store.now = func() time.Time { return now }

	store.Set("tok", []byte("x"), time.Minute)
	assert.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Minute)
	_, ok := store.Get("tok")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	store.Set("other", []byte("y"), time.Minute)
	store.mu.RLock()
	_, stale := store.data["tok"]
	store.mu.RUnlock()
	assert.False(t, stale, "expired entries are purged on write")
}

func TestOrderTokens_Delete(t *testing.T) {
	store := NewOrderTokens()
	store.Set("tok", []byte("x"), time.Minute)
	store.Delete("tok")

	_, ok := store.Get("tok")
	assert.False(t, ok)
}
