package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	dbm "bizdesk/internal/models/db_models"
)

// Stripe metadata keys. PayPal carries the idempotency key in custom_id.
const (
	metaTransactionID = "transaction_id"
	metaUserID        = "user_id"
	metaPackageKey    = "package_key"
)

type CheckoutParams struct {
	IdempotencyKey string
	UserID         string
	Email          string
	PackageKey     string
	PackageTitle   string
	Amount         decimal.Decimal
	Currency       string
	SuccessURL     string
	CancelURL      string
}

type CheckoutSession struct {
	URL          string
	ProcessorRef string
}

// WebhookEvent is a verified processor notification reduced to what the
// transaction ledger needs.
type WebhookEvent struct {
	ID           string
	Type         string
	Processor    dbm.PaymentMethod
	Key          string
	UserID       string
	Email        string
	PackageKey   string
	ProcessorRef string
	Amount       decimal.Decimal
	Currency     string
	// Status is the authoritative transition the event carries, empty when the
	// event is audit-only.
	Status  dbm.TransactionStatus
	Payload []byte
}

type PaymentProcessor interface {
	Method() dbm.PaymentMethod
	// Configured reports whether credentials for checkout are present.
	Configured() bool
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// Capture finalizes an approved order. Processors that capture on their
	// own treat it as a no-op.
	Capture(ctx context.Context, processorRef string) error
	VerifyWebhook(ctx context.Context, body []byte, header http.Header) (*WebhookEvent, error)
}

var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// minorUnits converts a decimal amount into the processor's integer unit.
func minorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(v int64, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return decimal.NewFromInt(v)
	}
	return decimal.New(v, -2)
}

// majorString formats amount the way PayPal expects ("97.00", "1500").
func majorString(amount decimal.Decimal, currency string) string {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return amount.Round(0).String()
	}
	return amount.StringFixed(2)
}
