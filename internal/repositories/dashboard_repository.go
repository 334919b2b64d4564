package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "bizdesk/internal/models/db_models"
)

// DashboardRepository backs the staff report. Per-user summaries are computed
// from TransactionRepository instead.
type DashboardRepository interface {
	CountTotalUsers(ctx context.Context) (int64, error)
	CountNewUsers(ctx context.Context, start, end time.Time) (int64, error)
	CountTransactionsByStatus(ctx context.Context, start, end time.Time) ([]StatusCount, error)
	CountOpenTickets(ctx context.Context) (int64, error)

	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	PackageMix(ctx context.Context, start, end time.Time) ([]PackageMixRow, error)
	TopCountries(ctx context.Context, start, end time.Time, limit int) ([]CountryRow, error)
	RecentTransactions(ctx context.Context, limit int) ([]dbm.Transaction, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time       `gorm:"column:bucket"`
	Sum    decimal.Decimal `gorm:"column:sum"`
}

type StatusCount struct {
	Status string          `gorm:"column:status"`
	Count  int64           `gorm:"column:count"`
	Amount decimal.Decimal `gorm:"column:amount"`
}

type PackageMixRow struct {
	PackageKey   string          `gorm:"column:package_key"`
	PackageTitle string          `gorm:"column:package_title"`
	Count        int64           `gorm:"column:count"`
	Revenue      decimal.Decimal `gorm:"column:revenue"`
}

type CountryRow struct {
	Country string `gorm:"column:country"`
	Count   int64  `gorm:"column:count"`
}

// ---------- Helpers ----------
func dateTrunc(tz string, unixColumn string) string {
	// unixColumn holds UNIX seconds
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

func truncArgs(interval, tz string) []interface{} {
	if tz == "" {
		return []interface{}{interval}
	}
	return []interface{}{interval, tz}
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.User{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewUsers(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.User{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTransactionsByStatus(ctx context.Context, start, end time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("status").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) CountOpenTickets(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.SupportTicket{}).
		Where("status = ?", dbm.TicketStatusOpen).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("transactions").
		Select(dateTrunc(tz, "updated_at")+" AS bucket, SUM(amount) AS sum", truncArgs(interval, tz)...).
		Where("status = ?", dbm.TxnStatusCompleted).
		Where("updated_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("users").
		Select(dateTrunc(tz, "created_at")+" AS bucket, COUNT(*) AS sum", truncArgs(interval, tz)...).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

// ---------- Mix ----------
func (r *dashboardRepository) PackageMix(ctx context.Context, start, end time.Time) ([]PackageMixRow, error) {
	var rows []PackageMixRow
	err := r.db.WithContext(ctx).
		Table("transactions").
		Select(`
			package_key,
			MAX(package_title) AS package_title,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS revenue`).
		Where("status = ?", dbm.TxnStatusCompleted).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("package_key").
		Order("count DESC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) TopCountries(ctx context.Context, start, end time.Time, limit int) ([]CountryRow, error) {
	var rows []CountryRow
	err := r.db.WithContext(ctx).
		Table("transactions").
		Select("country, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Where("country <> ''").
		Group("country").
		Order("count DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Recent ----------
func (r *dashboardRepository) RecentTransactions(ctx context.Context, limit int) ([]dbm.Transaction, error) {
	var rows []dbm.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
