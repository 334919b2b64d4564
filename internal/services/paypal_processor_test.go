package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/pkg/utils"
)

func TestPaypalProcessor_ClientWiredWhenCredentialsSet(t *testing.T) {
	proc := NewPaypalProcessor(PaypalConfig{ClientID: "id", ClientSecret: "secret", Mode: "sandbox"}, testLogger)

	assert.True(t, proc.Configured())
	assert.Equal(t, dbm.PaymentMethodPaypal, proc.Method())
}

func TestPaypalProcessor_UnconfiguredCheckout(t *testing.T) {
	proc := NewPaypalProcessor(PaypalConfig{}, testLogger)
	require.False(t, proc.Configured())

	_, err := proc.CreateCheckout(context.Background(), CheckoutParams{
		IdempotencyKey: "abc_171234",
		Amount:         decimal.NewFromInt(97),
		Currency:       "USD",
	})
	assert.ErrorIs(t, err, utils.ErrProcessorNotConfigured)
}
