package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/pkg/utils"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type stripeProcessor struct {
	cfg    StripeConfig
	api    *client.API
	logger *zap.Logger
}

func NewStripeProcessor(cfg StripeConfig, logger *zap.Logger) PaymentProcessor {
	p := &stripeProcessor{cfg: cfg, logger: logger}
	if cfg.SecretKey != "" {
		p.api = &client.API{}
		p.api.Init(cfg.SecretKey, nil)
	}
	return p
}

func (p *stripeProcessor) Method() dbm.PaymentMethod { return dbm.PaymentMethodStripe }

func (p *stripeProcessor) Configured() bool { return p.api != nil }

func (p *stripeProcessor) CreateCheckout(ctx context.Context, in CheckoutParams) (*CheckoutSession, error) {
	if p.api == nil {
		return nil, fmt.Errorf("stripe: %w", utils.ErrProcessorNotConfigured)
	}

	title := in.PackageTitle
	if title == "" {
		title = in.PackageKey
	}
	meta := map[string]string{
		metaTransactionID: in.IdempotencyKey,
		metaUserID:        in.UserID,
		metaPackageKey:    in.PackageKey,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.IdempotencyKey),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(in.Currency)),
				UnitAmount: stripe.Int64(minorUnits(in.Amount, in.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(title),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: meta},
	}
	if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, fmt.Errorf("%w: %s", utils.ErrProcessorFailure, stripeErr.Msg)
		}
		return nil, fmt.Errorf("%w: %s", utils.ErrProcessorFailure, err.Error())
	}

	return &CheckoutSession{URL: sess.URL, ProcessorRef: sess.ID}, nil
}

// Capture is a no-op; hosted Checkout captures on completion.
func (p *stripeProcessor) Capture(context.Context, string) error { return nil }

func (p *stripeProcessor) VerifyWebhook(_ context.Context, body []byte, header http.Header) (*WebhookEvent, error) {
	if p.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("stripe: %w", utils.ErrWebhookNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		header.Get("Stripe-Signature"),
		p.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrInvalidSignature, err.Error())
	}

	out := &WebhookEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Processor: dbm.PaymentMethodStripe,
		Payload:   body,
	}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.expired",
		"checkout.session.async_payment_failed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			p.logger.Warn("stripe: undecodable checkout session", zap.String("event_id", event.ID), zap.Error(err))
			return out, nil
		}
		fillFromSession(out, &sess)
		switch out.Type {
		case "checkout.session.completed":
			// delayed payment methods complete the session before funds arrive
			if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
				sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
				out.Status = dbm.TxnStatusCompleted
			}
		case "checkout.session.async_payment_succeeded":
			out.Status = dbm.TxnStatusCompleted
		default:
			out.Status = dbm.TxnStatusFailed
		}
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			p.logger.Warn("stripe: undecodable charge", zap.String("event_id", event.ID), zap.Error(err))
			return out, nil
		}
		out.Key = ch.Metadata[metaTransactionID]
		out.UserID = ch.Metadata[metaUserID]
		out.PackageKey = ch.Metadata[metaPackageKey]
		out.Currency = strings.ToUpper(string(ch.Currency))
		out.Amount = fromMinorUnits(ch.Amount, out.Currency)
		if ch.PaymentIntent != nil {
			out.ProcessorRef = ch.PaymentIntent.ID
		}
		if ch.BillingDetails != nil {
			out.Email = ch.BillingDetails.Email
		}
		if ch.Refunded {
			out.Status = dbm.TxnStatusRefunded
		}
	}
	return out, nil
}

func fillFromSession(out *WebhookEvent, sess *stripe.CheckoutSession) {
	out.Key = sess.Metadata[metaTransactionID]
	if out.Key == "" {
		out.Key = sess.ClientReferenceID
	}
	out.UserID = sess.Metadata[metaUserID]
	out.PackageKey = sess.Metadata[metaPackageKey]
	out.ProcessorRef = sess.ID
	out.Currency = strings.ToUpper(string(sess.Currency))
	out.Amount = fromMinorUnits(sess.AmountTotal, out.Currency)
	out.Email = sess.CustomerEmail
	if out.Email == "" && sess.CustomerDetails != nil {
		out.Email = sess.CustomerDetails.Email
	}
}
