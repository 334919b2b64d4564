package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/pkg/utils"
)

func TestIdempotencyKey_SanitizesAndRoundTrips(t *testing.T) {
	key, err := IdempotencyKey("abc", 171234)
	require.NoError(t, err)
	assert.Equal(t, "abc_171234", key)
	assert.Equal(t, "abc", userFromKey(key))

	key, err = IdempotencyKey("a.b@c", 1)
	require.NoError(t, err)
	assert.Equal(t, "a_b_c_1", key)
}

func TestIdempotencyKey_LongestAcceptedKeepsOwner(t *testing.T) {
	uid := strings.Repeat("u", maxKeyLength-len("_1772366400000"))
	key, err := IdempotencyKey(uid, 1772366400000)
	require.NoError(t, err)
	assert.Len(t, key, maxKeyLength)
	assert.Equal(t, uid, userFromKey(key))
}

func TestIdempotencyKey_RejectsOverLongUser(t *testing.T) {
	_, err := IdempotencyKey(strings.Repeat("u", 140), 1772366400000)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestCheckout_RejectsOverLongUser(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateCheckout(context.Background(), Caller{UserID: strings.Repeat("u", 140)}, checkoutRequest())
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Empty(t, f.stripe.checkouts)
}
