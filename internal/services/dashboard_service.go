package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	resp "bizdesk/internal/models/response_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

type DashboardService interface {
	Summary(ctx context.Context, userID string) (resp.PurchaseSummary, error)
	Purchases(ctx context.Context, userID string) ([]dbm.Transaction, error)
	// Watch emits the user's summary now and again after every change until
	// ctx is done. Failed recomputations emit a zero summary.
	Watch(ctx context.Context, userID string) <-chan resp.PurchaseSummary
	BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo   repositories.DashboardRepository
	txns   repositories.TransactionRepository
	feed   ChangeFeed
	logger *zap.Logger
}

func NewDashboardService(
	repo repositories.DashboardRepository,
	txns repositories.TransactionRepository,
	feed ChangeFeed,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{repo: repo, txns: txns, feed: feed, logger: logger}
}

// Summarize folds owned transactions into count and exact decimal total.
// Currency is reported only when every transaction shares it.
func Summarize(txns []dbm.Transaction) resp.PurchaseSummary {
	out := resp.PurchaseSummary{Total: decimal.Zero}
	mixed := false
	for _, t := range txns {
		out.Count++
		out.Total = out.Total.Add(t.Amount)
		switch {
		case out.Currency == "" && !mixed:
			out.Currency = t.Currency
		case out.Currency != t.Currency:
			out.Currency = ""
			mixed = true
		}
	}
	return out
}

func (s *dashboardService) Summary(ctx context.Context, userID string) (resp.PurchaseSummary, error) {
	txns, err := s.txns.ListByUser(ctx, userID)
	if err != nil {
		return resp.PurchaseSummary{Total: decimal.Zero}, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return Summarize(txns), nil
}

func (s *dashboardService) Purchases(ctx context.Context, userID string) ([]dbm.Transaction, error) {
	txns, err := s.txns.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return txns, nil
}

func (s *dashboardService) Watch(ctx context.Context, userID string) <-chan resp.PurchaseSummary {
	out := make(chan resp.PurchaseSummary, 1)
	changes, cancel := s.feed.Subscribe(userID)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			summary, err := s.Summary(ctx, userID)
			if err != nil {
				s.logger.Warn("dashboard summary failed", zap.String("user_id", userID), zap.Error(err))
				summary = resp.PurchaseSummary{Total: decimal.Zero}
			}
			select {
			case out <- summary:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30)
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	totalUsers, err := s.repo.CountTotalUsers(ctx)
	if err != nil {
		return nil, err
	}
	newUsers, err := s.repo.CountNewUsers(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	openTickets, err := s.repo.CountOpenTickets(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.CountTransactionsByStatus(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	kpis := resp.KPIBlock{
		TotalUsers:  totalUsers,
		NewUsers:    newUsers,
		OpenTickets: openTickets,
		Revenue:     decimal.Zero,
	}
	for _, row := range byStatus {
		kpis.TotalTransactions += row.Count
		switch dbm.TransactionStatus(row.Status) {
		case dbm.TxnStatusPending:
			kpis.Pending = row.Count
		case dbm.TxnStatusCompleted:
			kpis.Completed = row.Count
			kpis.Revenue = row.Amount
		case dbm.TxnStatusFailed:
			kpis.Failed = row.Count
		case dbm.TxnStatusRefunded:
			kpis.Refunded = row.Count
		}
	}
	if kpis.Completed > 0 {
		kpis.AverageOrder = kpis.Revenue.Div(decimal.NewFromInt(kpis.Completed)).Round(2)
	}
	if paid := kpis.Completed + kpis.Refunded; paid > 0 {
		kpis.RefundRatePct = float64(kpis.Refunded) * 100.0 / float64(paid)
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	revenue := resp.RevenueSeries{Currency: currency, Total: decimal.Zero}
	for _, r := range revenueRows {
		revenue.Points = append(revenue.Points, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		revenue.Total = revenue.Total.Add(r.Sum)
	}

	newUsersRows, err := s.repo.NewUsersSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	var newUsersPoints []resp.SeriesPoint
	for _, r := range newUsersRows {
		newUsersPoints = append(newUsersPoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
	}

	// ---------- Package mix ----------
	mixRows, err := s.repo.PackageMix(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	var mixTotal int64
	for _, r := range mixRows {
		mixTotal += r.Count
	}
	var mix []resp.PackageMixItem
	for _, r := range mixRows {
		var pct float64
		if mixTotal > 0 {
			pct = float64(r.Count) * 100.0 / float64(mixTotal)
		}
		mix = append(mix, resp.PackageMixItem{
			PackageKey:   r.PackageKey,
			PackageTitle: r.PackageTitle,
			Count:        r.Count,
			Percent:      pct,
			Revenue:      r.Revenue,
		})
	}

	// ---------- Top countries ----------
	countryRows, err := s.repo.TopCountries(ctx, rng.Start, rng.End, 10)
	if err != nil {
		return nil, err
	}
	var countries []resp.TopCountry
	for _, r := range countryRows {
		countries = append(countries, resp.TopCountry{Country: r.Country, Count: r.Count})
	}

	// ---------- Recent payments ----------
	recentRows, err := s.repo.RecentTransactions(ctx, 10)
	if err != nil {
		return nil, err
	}
	var recent []resp.RecentPayment
	for _, t := range recentRows {
		recent = append(recent, resp.RecentPayment{
			ID:            t.ID,
			CreatedAt:     time.Unix(t.CreatedAt, 0).UTC(),
			Amount:        t.Amount,
			Currency:      t.Currency,
			Status:        string(t.Status),
			PaymentMethod: string(t.PaymentMethod),
			PackageTitle:  t.PackageTitle,
			Email:         t.Email,
		})
	}

	return &resp.DashboardReport{
		Range:          rng,
		KPIs:           kpis,
		Revenue:        revenue,
		NewUsers:       resp.CountSeries{Points: newUsersPoints},
		PackageMix:     mix,
		TopCountries:   countries,
		RecentPayments: recent,
	}, nil
}
