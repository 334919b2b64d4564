package db_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TxnStatusPending   TransactionStatus = "pending"
	TxnStatusCompleted TransactionStatus = "completed"
	TxnStatusFailed    TransactionStatus = "failed"
	TxnStatusRefunded  TransactionStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodStripe  PaymentMethod = "stripe"
	PaymentMethodPaypal  PaymentMethod = "paypal"
	PaymentMethodUnknown PaymentMethod = "unknown"
)

func ParsePaymentMethod(s string) PaymentMethod {
	switch PaymentMethod(s) {
	case PaymentMethodStripe, PaymentMethodPaypal:
		return PaymentMethod(s)
	default:
		return PaymentMethodUnknown
	}
}

// Transaction is keyed by its idempotency key; the same key always lands on the
// same row.
type Transaction struct {
	ID            string            `gorm:"primaryKey;size:160" json:"id"`
	UserID        string            `gorm:"index;size:128;not null" json:"userId"`
	Email         string            `gorm:"index" json:"email,omitempty"`
	PackageKey    string            `json:"packageKey,omitempty"`
	PackageTitle  string            `json:"packageTitle,omitempty"`
	Country       string            `json:"country,omitempty"`
	Company       string            `json:"company,omitempty"`
	Amount        decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency      string            `gorm:"size:3" json:"currency"`
	Status        TransactionStatus `gorm:"size:16;index" json:"status"`
	PaymentMethod PaymentMethod     `gorm:"size:16" json:"paymentMethod"`
	ProcessorRef  string            `gorm:"index" json:"processorRef,omitempty"`

	AddOns         datatypes.JSON   `gorm:"type:jsonb" json:"addOns,omitempty"`
	Features       datatypes.JSON   `gorm:"type:jsonb" json:"features,omitempty"`
	Breakdown      datatypes.JSON   `gorm:"type:jsonb" json:"breakdown,omitempty"`
	CouponCode     string           `json:"couponCode,omitempty"`
	CouponPercent  *decimal.Decimal `gorm:"type:numeric(5,2)" json:"couponPercent,omitempty"`
	DiscountAmount *decimal.Decimal `gorm:"type:numeric(14,2)" json:"discountAmount,omitempty"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updatedAt"`
}
