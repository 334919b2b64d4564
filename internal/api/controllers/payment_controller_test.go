package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/models/request_models"
	resp "bizdesk/internal/models/response_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

type stubWebhookService struct {
	err       error
	processor string
	body      []byte
	signature string
}

func (s *stubWebhookService) HandleWebhook(_ context.Context, processor string, body []byte, header http.Header) error {
	s.processor = processor
	s.body = body
	s.signature = header.Get("Stripe-Signature")
	return s.err
}

type stubPaymentService struct {
	caller    services.Caller
	reconcile request_models.ReconcileRequest
}

func (s *stubPaymentService) CreateCheckout(context.Context, services.Caller, request_models.CheckoutRequest) (*resp.CheckoutResponse, error) {
	return nil, utils.ErrInvalidAmount
}

func (s *stubPaymentService) Reconcile(_ context.Context, caller services.Caller, req request_models.ReconcileRequest) (*resp.ReconcileResponse, error) {
	s.caller = caller
	s.reconcile = req
	return &resp.ReconcileResponse{TransactionID: "abc_171234", Redirect: "/dashboard/purchases"}, nil
}

func setupPaymentRouter(pay services.PaymentService, hooks services.WebhookService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	_ = utils.RegisterValidators()
	r := gin.New()
	ctrl := NewPaymentController(pay, hooks)
	r.POST("/payments/webhooks/:processor", ctrl.HandleWebhook)

	authed := r.Group("/", func(c *gin.Context) {
		c.Set("user_id", "abc")
		c.Set("email", "abc@example.com")
		c.Set("Role", "user")
	})
	authed.POST("/payments/reconcile", ctrl.Reconcile)
	authed.POST("/payments/checkout", ctrl.CreateCheckout)
	return r
}

func TestHandleWebhook_BadSignatureIs400(t *testing.T) {
	hooks := &stubWebhookService{err: utils.ErrInvalidSignature}
	r := setupPaymentRouter(&stubPaymentService{}, hooks)

	body := `{"id":"evt_1","type":"checkout.session.completed"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "stripe", hooks.processor)
	assert.Equal(t, body, string(hooks.body), "body must reach verification byte for byte")
	assert.Equal(t, "t=1,v1=bad", hooks.signature)

	var env utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Status)
}

func TestHandleWebhook_UnconfiguredIs500(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentService{}, &stubWebhookService{err: utils.ErrWebhookNotConfigured})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/webhooks/paypal", strings.NewReader("{}")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleWebhook_Accepted(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentService{}, &stubWebhookService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/webhooks/stripe", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestReconcile_BindsRedirectParameters(t *testing.T) {
	pay := &stubPaymentService{}
	r := setupPaymentRouter(pay, &stubWebhookService{})

	body := `{"status":"success","payment":"paypal","pkg":"growth","amount":"97","currency":"USD","order":"tok-1","token":"ORDER1"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/reconcile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", pay.caller.UserID)
	assert.Equal(t, "success", pay.reconcile.Status)
	assert.Equal(t, "tok-1", pay.reconcile.Order)
	assert.Equal(t, "ORDER1", pay.reconcile.Token)
	assert.Contains(t, w.Body.String(), `"transactionId":"abc_171234"`)
}

func TestReconcile_NotReachableByGet(t *testing.T) {
	pay := &stubPaymentService{}
	r := setupPaymentRouter(pay, &stubWebhookService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/reconcile?status=success&order=tok-1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, pay.reconcile.Status)
}

func TestCreateCheckout_ServiceErrorMapsTo400(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentService{}, &stubWebhookService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/checkout", strings.NewReader(`{"packageKey":"growth","totalAmount":"0"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
