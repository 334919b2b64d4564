package request_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CheckoutRequest struct {
	PackageKey     string           `json:"packageKey" binding:"required"`
	PackageTitle   string           `json:"packageTitle"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	Currency       string           `json:"currency" binding:"omitempty,currency"`
	UserID         string           `json:"userId"`
	CustomerEmail  string           `json:"customerEmail" binding:"omitempty,email"`
	SuccessPath    string           `json:"successPath"`
	CancelPath     string           `json:"cancelPath"`
	Processor      string           `json:"processor"`
	Country        string           `json:"country"`
	Company        string           `json:"company"`
	AddOns         datatypes.JSON   `json:"addOns"`
	Features       datatypes.JSON   `json:"features"`
	Breakdown      datatypes.JSON   `json:"breakdown"`
	CouponCode     string           `json:"couponCode"`
	CouponPercent  *decimal.Decimal `json:"couponPercent"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
}

// ReconcileRequest carries the query parameters the browser landed with after
// the processor redirect.
type ReconcileRequest struct {
	Status   string `json:"status" form:"status"`
	Payment  string `json:"payment" form:"payment"`
	Pkg      string `json:"pkg" form:"pkg"`
	Amount   string `json:"amount" form:"amount"`
	Currency string `json:"currency" form:"currency"`
	Title    string `json:"title" form:"title"`
	Order    string `json:"order" form:"order"`
	// Token is the PayPal order id appended to the return URL on approval.
	Token string `json:"token" form:"token"`
}
