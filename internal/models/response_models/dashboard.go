package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseSummary is the per-user running aggregate over owned transactions.
type PurchaseSummary struct {
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency,omitempty"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalUsers        int64 `json:"total_users"`
	NewUsers          int64 `json:"new_users"`
	TotalTransactions int64 `json:"total_transactions"`
	Pending           int64 `json:"pending"`
	Completed         int64 `json:"completed"`
	Failed            int64 `json:"failed"`
	Refunded          int64 `json:"refunded"`
	OpenTickets       int64 `json:"open_tickets"`

	Revenue       decimal.Decimal `json:"revenue"`
	AverageOrder  decimal.Decimal `json:"average_order"`
	RefundRatePct float64         `json:"refund_rate_pct"`
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

type RevenueSeries struct {
	Currency string          `json:"currency"`
	Points   []SeriesPoint   `json:"points"`
	Total    decimal.Decimal `json:"total"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
}

type PackageMixItem struct {
	PackageKey   string          `json:"package_key"`
	PackageTitle string          `json:"package_title"`
	Count        int64           `json:"count"`
	Percent      float64         `json:"percent"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type TopCountry struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type RecentPayment struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PackageTitle  string          `json:"package_title"`
	Email         string          `json:"email"`
}

type DashboardReport struct {
	Range          TimeRange        `json:"range"`
	KPIs           KPIBlock         `json:"kpis"`
	Revenue        RevenueSeries    `json:"revenue"`
	NewUsers       CountSeries      `json:"new_users"`
	PackageMix     []PackageMixItem `json:"package_mix"`
	TopCountries   []TopCountry     `json:"top_countries"`
	RecentPayments []RecentPayment  `json:"recent_payments"`
}
