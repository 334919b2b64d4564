package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/pkg/utils"
)

type PaypalConfig struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	// Mode is "live" or "sandbox".
	Mode      string
	BrandName string
}

// paypalAPI is the subset of *paypal.Client the processor calls.
type paypalAPI interface {
	CreateOrder(ctx context.Context, intent string, purchaseUnits []paypal.PurchaseUnitRequest, payer *paypal.PaymentSource, appContext *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, req paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
	VerifyWebhookSignature(ctx context.Context, httpReq *http.Request, webhookID string) (*paypal.VerifyWebhookResponse, error)
}

var _ paypalAPI = (*paypal.Client)(nil)

type paypalProcessor struct {
	cfg    PaypalConfig
	api    paypalAPI
	logger *zap.Logger
}

func NewPaypalProcessor(cfg PaypalConfig, logger *zap.Logger) PaymentProcessor {
	p := &paypalProcessor{cfg: cfg, logger: logger}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return p
	}

	base := paypal.APIBaseSandBox
	if strings.EqualFold(cfg.Mode, "live") {
		base = paypal.APIBaseLive
	}
	c, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, base)
	if err != nil {
		logger.Warn("paypal: client init failed", zap.Error(err))
		return p
	}
	p.api = c
	return p
}

func (p *paypalProcessor) Method() dbm.PaymentMethod { return dbm.PaymentMethodPaypal }

func (p *paypalProcessor) Configured() bool { return p.api != nil }

func (p *paypalProcessor) CreateCheckout(ctx context.Context, in CheckoutParams) (*CheckoutSession, error) {
	if p.api == nil {
		return nil, fmt.Errorf("paypal: %w", utils.ErrProcessorNotConfigured)
	}

	description := in.PackageTitle
	if description == "" {
		description = in.PackageKey
	}
	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: in.PackageKey,
		CustomID:    in.IdempotencyKey,
		Description: description,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: strings.ToUpper(in.Currency),
			Value:    majorString(in.Amount, in.Currency),
		},
	}}
	appCtx := &paypal.ApplicationContext{
		BrandName:          p.cfg.BrandName,
		ShippingPreference: paypal.ShippingPreferenceNoShipping,
		UserAction:         paypal.UserActionPayNow,
		ReturnURL:          in.SuccessURL,
		CancelURL:          in.CancelURL,
	}

	order, err := p.api.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrProcessorFailure, paypalMessage(err))
	}

	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return &CheckoutSession{URL: link.Href, ProcessorRef: order.ID}, nil
		}
	}
	return nil, fmt.Errorf("%w: paypal order %s has no approval link", utils.ErrProcessorFailure, order.ID)
}

// Capture finalizes an approved order. An order that was already captured is
// treated as success so a reload of the return page stays harmless.
func (p *paypalProcessor) Capture(ctx context.Context, orderID string) error {
	if p.api == nil {
		return fmt.Errorf("paypal: %w", utils.ErrProcessorNotConfigured)
	}
	if orderID == "" {
		return fmt.Errorf("%w: missing paypal order token", utils.ErrMissingOrderContext)
	}

	_, err := p.api.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err == nil {
		return nil
	}
	var perr *paypal.ErrorResponse
	if errors.As(err, &perr) {
		for _, d := range perr.Details {
			if d.Issue == "ORDER_ALREADY_CAPTURED" {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", utils.ErrProcessorFailure, paypalMessage(err))
}

type paypalWebhookBody struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
		Amount   struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

func (p *paypalProcessor) VerifyWebhook(ctx context.Context, body []byte, header http.Header) (*WebhookEvent, error) {
	if p.cfg.WebhookID == "" || p.api == nil {
		return nil, fmt.Errorf("paypal: %w", utils.ErrWebhookNotConfigured)
	}
	if header.Get("Paypal-Transmission-Sig") == "" || header.Get("Paypal-Transmission-Id") == "" {
		return nil, fmt.Errorf("%w: missing paypal transmission headers", utils.ErrInvalidSignature)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = header.Clone()

	res, err := p.api.VerifyWebhookSignature(ctx, req, p.cfg.WebhookID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrInvalidSignature, paypalMessage(err))
	}
	if res == nil || res.VerificationStatus != "SUCCESS" {
		return nil, utils.ErrInvalidSignature
	}

	var payload paypalWebhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: undecodable paypal event", utils.ErrInvalidRequest)
	}

	out := &WebhookEvent{
		ID:           payload.ID,
		Type:         payload.EventType,
		Processor:    dbm.PaymentMethodPaypal,
		Key:          payload.Resource.CustomID,
		ProcessorRef: payload.Resource.SupplementaryData.RelatedIDs.OrderID,
		Currency:     strings.ToUpper(payload.Resource.Amount.CurrencyCode),
		Payload:      body,
	}
	if out.ProcessorRef == "" {
		out.ProcessorRef = payload.Resource.ID
	}
	if v, err := decimal.NewFromString(payload.Resource.Amount.Value); err == nil {
		out.Amount = v
	}
	out.UserID = userFromKey(out.Key)

	switch payload.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		out.Status = dbm.TxnStatusCompleted
	case "PAYMENT.CAPTURE.DENIED":
		out.Status = dbm.TxnStatusFailed
	case "PAYMENT.CAPTURE.REFUNDED":
		out.Status = dbm.TxnStatusRefunded
	}
	return out, nil
}

func paypalMessage(err error) string {
	var perr *paypal.ErrorResponse
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}
