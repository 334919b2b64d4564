package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/pkg/utils"
)

type paymentFixture struct {
	svc    *paymentService
	txns   *fakeTxnRepo
	feed   *fakeFeed
	stripe *fakeProcessor
	paypal *fakeProcessor
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		txns: newFakeTxnRepo(),
		feed: newFakeFeed(),
		stripe: &fakeProcessor{
			method:     dbm.PaymentMethodStripe,
			configured: true,
			session:    &CheckoutSession{URL: "https://checkout.stripe.test/cs_1", ProcessorRef: "cs_1"},
		},
		paypal: &fakeProcessor{
			method:     dbm.PaymentMethodPaypal,
			configured: true,
			session:    &CheckoutSession{URL: "https://paypal.test/approve/ORDER1", ProcessorRef: "ORDER1"},
		},
	}
	svc := NewPaymentService(
		PaymentConfig{AppBaseURL: "https://app.test/"},
		newMemoryOrders(), f.txns, f.feed, testLogger,
		f.stripe, f.paypal,
	).(*paymentService)
	svc.now = func() time.Time { return time.UnixMilli(171234) }
	f.svc = svc
	return f
}

func checkoutRequest() request_models.CheckoutRequest {
	return request_models.CheckoutRequest{
		PackageKey:   "growth",
		PackageTitle: "Growth Package",
		TotalAmount:  decimal.NewFromInt(97),
		Currency:     "usd",
	}
}

func TestCheckoutThenReconcile_RecordsPendingTransaction(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc", Email: "abc@example.com"}

	out, err := f.svc.CreateCheckout(ctx, caller, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", out.URL)
	assert.Equal(t, "abc_171234", out.TransactionID)
	assert.NotEmpty(t, out.OrderToken)
	assert.Empty(t, f.txns.rows, "checkout must not write the ledger")

	require.Len(t, f.stripe.checkouts, 1)
	params := f.stripe.checkouts[0]
	assert.Equal(t, "abc_171234", params.IdempotencyKey)
	assert.Equal(t, "USD", params.Currency)
	assert.True(t, strings.HasPrefix(params.SuccessURL, "https://app.test/payment/success?"))

	success, err := url.Parse(params.SuccessURL)
	require.NoError(t, err)
	assert.Equal(t, out.OrderToken, success.Query().Get("order"))
	assert.Equal(t, "success", success.Query().Get("status"))

	res, err := f.svc.Reconcile(ctx, caller, request_models.ReconcileRequest{
		Status: "success", Payment: "stripe", Order: out.OrderToken,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc_171234", res.TransactionID)
	assert.Equal(t, "/dashboard/purchases", res.Redirect)

	row := f.txns.rows["abc_171234"]
	require.NotNil(t, row)
	assert.Equal(t, "abc", row.UserID)
	assert.True(t, row.Amount.Equal(decimal.NewFromInt(97)))
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, dbm.TxnStatusPending, row.Status)
	assert.Equal(t, dbm.PaymentMethodStripe, row.PaymentMethod)
	assert.Equal(t, "cs_1", row.ProcessorRef)
	assert.Equal(t, []string{"abc"}, f.feed.published)
}

func TestReconcile_ReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc"}

	out, err := f.svc.CreateCheckout(ctx, caller, checkoutRequest())
	require.NoError(t, err)

	req := request_models.ReconcileRequest{Status: "success", Order: out.OrderToken}
	_, err = f.svc.Reconcile(ctx, caller, req)
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.UnixMilli(999999) }
	_, err = f.svc.Reconcile(ctx, caller, req)
	require.NoError(t, err)

	assert.Len(t, f.txns.rows, 1)
	assert.Equal(t, 2, f.txns.merges)
}

func TestReconcile_DoesNotDowngradeWebhookStatus(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc"}

	out, err := f.svc.CreateCheckout(ctx, caller, checkoutRequest())
	require.NoError(t, err)
	require.NoError(t, f.txns.ApplyStatus(ctx, &dbm.Transaction{
		ID: out.TransactionID, UserID: "abc", Status: dbm.TxnStatusCompleted,
	}))

	_, err = f.svc.Reconcile(ctx, caller, request_models.ReconcileRequest{Status: "success", Order: out.OrderToken})
	require.NoError(t, err)
	assert.Equal(t, dbm.TxnStatusCompleted, f.txns.rows[out.TransactionID].Status)
}

func TestReconcile_NonSuccessWritesNothing(t *testing.T) {
	f := newPaymentFixture(t)

	for _, status := range []string{"cancelled", "", "SUCCESS"} {
		_, err := f.svc.Reconcile(context.Background(), Caller{UserID: "abc"}, request_models.ReconcileRequest{
			Status: status, Pkg: "growth", Amount: "97", Currency: "USD",
		})
		assert.ErrorIs(t, err, utils.ErrPaymentNotSuccessful, "status %q", status)
	}
	assert.Zero(t, f.txns.merges)
	assert.Empty(t, f.feed.published)
}

func TestReconcile_FallbackWithoutTokenIsNotStable(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc"}
	req := request_models.ReconcileRequest{Status: "success", Payment: "stripe", Pkg: "growth", Amount: "97", Currency: "usd"}

	first, err := f.svc.Reconcile(ctx, caller, req)
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.UnixMilli(171999) }
	second, err := f.svc.Reconcile(ctx, caller, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Len(t, f.txns.rows, 2)
	assert.Equal(t, "USD", f.txns.rows[first.TransactionID].Currency)
}

func TestReconcile_RejectsZeroAmountAndMissingUser(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Reconcile(ctx, Caller{UserID: "abc"}, request_models.ReconcileRequest{Status: "success", Amount: "0"})
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)

	_, err = f.svc.Reconcile(ctx, Caller{}, request_models.ReconcileRequest{Status: "success", Amount: "10"})
	assert.ErrorIs(t, err, utils.ErrMissingOrderContext)
	assert.Zero(t, f.txns.merges)
}

func TestReconcile_OtherUsersTokenIsForbidden(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	out, err := f.svc.CreateCheckout(ctx, Caller{UserID: "abc"}, checkoutRequest())
	require.NoError(t, err)

	_, err = f.svc.Reconcile(ctx, Caller{UserID: "mallory"}, request_models.ReconcileRequest{Status: "success", Order: out.OrderToken})
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.Empty(t, f.txns.rows)
}

func TestReconcile_PaypalCapturesApprovedOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc"}

	req := checkoutRequest()
	req.Processor = "paypal"
	out, err := f.svc.CreateCheckout(ctx, caller, req)
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.test/approve/ORDER1", out.URL)

	_, err = f.svc.Reconcile(ctx, caller, request_models.ReconcileRequest{Status: "success", Order: out.OrderToken, Token: "ORDER1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORDER1"}, f.paypal.captures)
	assert.Equal(t, dbm.PaymentMethodPaypal, f.txns.rows[out.TransactionID].PaymentMethod)
}

func TestCreateCheckout_Validation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	caller := Caller{UserID: "abc"}

	req := checkoutRequest()
	req.TotalAmount = decimal.Zero
	_, err := f.svc.CreateCheckout(ctx, caller, req)
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)

	req = checkoutRequest()
	req.Processor = "bitcoin"
	_, err = f.svc.CreateCheckout(ctx, caller, req)
	assert.ErrorIs(t, err, utils.ErrUnknownProcessor)

	req = checkoutRequest()
	req.UserID = "someone-else"
	_, err = f.svc.CreateCheckout(ctx, caller, req)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	f.stripe.configured = false
	_, err = f.svc.CreateCheckout(ctx, caller, checkoutRequest())
	assert.ErrorIs(t, err, utils.ErrProcessorNotConfigured)

	assert.Empty(t, f.stripe.checkouts, "no processor call for rejected requests")
}

func TestCreateCheckout_ReturnPathMustBeLocal(t *testing.T) {
	f := newPaymentFixture(t)

	req := checkoutRequest()
	req.SuccessPath = "//evil.example.com/steal"
	req.CancelPath = "/pricing"
	_, err := f.svc.CreateCheckout(context.Background(), Caller{UserID: "abc"}, req)
	require.NoError(t, err)

	params := f.stripe.checkouts[0]
	assert.True(t, strings.HasPrefix(params.SuccessURL, "https://app.test/payment/success?"))
	assert.True(t, strings.HasPrefix(params.CancelURL, "https://app.test/pricing?"))
}
