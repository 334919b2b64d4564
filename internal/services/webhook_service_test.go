package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/pkg/utils"
)

const testWebhookSecret = "whsec_test_secret"

const checkoutCompletedEvent = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_1",
      "object": "checkout.session",
      "client_reference_id": "abc_171234",
      "payment_status": "paid",
      "amount_total": 9700,
      "currency": "usd",
      "customer_email": "abc@example.com",
      "metadata": {"transaction_id": "abc_171234", "user_id": "abc", "package_key": "growth"}
    }
  }
}`

func signedStripeHeader(body []byte) http.Header {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: body,
		Secret:  testWebhookSecret,
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return h
}

func newStripeWebhookService(events *fakeEventRepo, txns *fakeTxnRepo, feed *fakeFeed) WebhookService {
	stripeProc := NewStripeProcessor(StripeConfig{WebhookSecret: testWebhookSecret}, testLogger)
	return NewWebhookService(events, txns, feed, testLogger, stripeProc)
}

func TestWebhook_InvalidSignatureWritesNothing(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	svc := newStripeWebhookService(events, txns, feed)

	h := http.Header{}
	h.Set("Stripe-Signature", "t=1,v1=deadbeef")
	err := svc.HandleWebhook(context.Background(), "stripe", []byte(checkoutCompletedEvent), h)

	assert.ErrorIs(t, err, utils.ErrInvalidSignature)
	assert.Empty(t, events.events)
	assert.Zero(t, txns.applies)
	assert.Empty(t, feed.published)
}

func TestWebhook_StripeCompletedAppliesStatus(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	svc := newStripeWebhookService(events, txns, feed)
	body := []byte(checkoutCompletedEvent)

	require.NoError(t, svc.HandleWebhook(context.Background(), "stripe", body, signedStripeHeader(body)))

	audit := events.events["evt_1"]
	require.NotNil(t, audit)
	assert.Equal(t, "checkout.session.completed", audit.EventType)
	assert.Equal(t, "abc_171234", audit.TransactionID)

	row := txns.rows["abc_171234"]
	require.NotNil(t, row)
	assert.Equal(t, dbm.TxnStatusCompleted, row.Status)
	assert.Equal(t, "cs_1", row.ProcessorRef)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(97)))
	assert.Equal(t, []string{"abc"}, feed.published)

	// redelivery keeps a single audit record
	require.NoError(t, svc.HandleWebhook(context.Background(), "stripe", body, signedStripeHeader(body)))
	assert.Len(t, events.events, 1)
}

func TestWebhook_MissingSecretIsConfigurationError(t *testing.T) {
	stripeProc := NewStripeProcessor(StripeConfig{}, testLogger)
	svc := NewWebhookService(newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed(), testLogger, stripeProc)

	err := svc.HandleWebhook(context.Background(), "stripe", []byte("{}"), http.Header{})
	assert.ErrorIs(t, err, utils.ErrWebhookNotConfigured)
}

func TestWebhook_RefundIsTerminal(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	proc := &fakeProcessor{method: dbm.PaymentMethodPaypal}
	svc := NewWebhookService(events, txns, feed, testLogger, proc)
	ctx := context.Background()

	proc.event = &WebhookEvent{ID: "WH-1", Type: "PAYMENT.CAPTURE.REFUNDED", Processor: dbm.PaymentMethodPaypal,
		Key: "abc_171234", UserID: "abc", Status: dbm.TxnStatusRefunded}
	require.NoError(t, svc.HandleWebhook(ctx, "paypal", nil, nil))

	proc.event = &WebhookEvent{ID: "WH-2", Type: "PAYMENT.CAPTURE.COMPLETED", Processor: dbm.PaymentMethodPaypal,
		Key: "abc_171234", UserID: "abc", Status: dbm.TxnStatusCompleted}
	require.NoError(t, svc.HandleWebhook(ctx, "paypal", nil, nil))

	assert.Equal(t, dbm.TxnStatusRefunded, txns.rows["abc_171234"].Status)
	assert.Len(t, events.events, 2)
}

func TestWebhook_AuditOnlyEvents(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	proc := &fakeProcessor{method: dbm.PaymentMethodPaypal}
	svc := NewWebhookService(events, txns, feed, testLogger, proc)
	ctx := context.Background()

	proc.event = &WebhookEvent{ID: "WH-3", Type: "CHECKOUT.ORDER.APPROVED", Processor: dbm.PaymentMethodPaypal}
	require.NoError(t, svc.HandleWebhook(ctx, "paypal", nil, nil))

	proc.event = &WebhookEvent{ID: "WH-4", Type: "PAYMENT.CAPTURE.COMPLETED", Processor: dbm.PaymentMethodPaypal,
		Status: dbm.TxnStatusCompleted}
	require.NoError(t, svc.HandleWebhook(ctx, "paypal", nil, nil))

	assert.Len(t, events.events, 2)
	assert.Zero(t, txns.applies)
	assert.Empty(t, feed.published)

	proc.verifyErr = errors.New("boom")
	assert.Error(t, svc.HandleWebhook(ctx, "paypal", nil, nil))

	assert.ErrorIs(t, svc.HandleWebhook(ctx, "square", nil, nil), utils.ErrUnknownProcessor)
}

const checkoutExpiredEvent = `{
  "id": "evt_2",
  "object": "event",
  "type": "checkout.session.expired",
  "data": {
    "object": {
      "id": "cs_2",
      "object": "checkout.session",
      "client_reference_id": "abc_555",
      "payment_status": "unpaid",
      "amount_total": 9700,
      "currency": "usd",
      "metadata": {"transaction_id": "abc_555", "user_id": "abc"}
    }
  }
}`

func TestWebhook_ExpiredSessionCreatesNoTransaction(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	svc := newStripeWebhookService(events, txns, feed)
	body := []byte(checkoutExpiredEvent)

	require.NoError(t, svc.HandleWebhook(context.Background(), "stripe", body, signedStripeHeader(body)))

	assert.Len(t, events.events, 1)
	owned, err := txns.ListByUser(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, owned)
	assert.Equal(t, int64(0), Summarize(owned).Count)
}

func TestWebhook_ExpiredSessionFailsPendingRow(t *testing.T) {
	events, txns, feed := newFakeEventRepo(), newFakeTxnRepo(), newFakeFeed()
	svc := newStripeWebhookService(events, txns, feed)
	ctx := context.Background()

	require.NoError(t, txns.MergeUpsert(ctx, &dbm.Transaction{ID: "abc_555", UserID: "abc",
		Amount: decimal.NewFromInt(97), Currency: "USD", Status: dbm.TxnStatusPending}))

	body := []byte(checkoutExpiredEvent)
	require.NoError(t, svc.HandleWebhook(ctx, "stripe", body, signedStripeHeader(body)))

	assert.Equal(t, dbm.TxnStatusFailed, txns.rows["abc_555"].Status)
}
