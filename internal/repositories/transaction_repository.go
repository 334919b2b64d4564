package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizdesk/internal/models/db_models"
)

// descriptiveColumns are refreshed when a merge write lands on an existing
// row. status is deliberately absent.
var descriptiveColumns = []string{
	"email", "package_key", "package_title", "country", "company",
	"amount", "currency", "payment_method", "add_ons", "features", "breakdown",
	"coupon_code", "coupon_percent", "discount_amount", "updated_at",
}

type TransactionRepository interface {
	// MergeUpsert inserts txn or, when its id already exists, refreshes the
	// descriptive fields while leaving status untouched.
	MergeUpsert(ctx context.Context, txn *db_models.Transaction) error
	// ApplyStatus writes an authoritative status. completed and refunded create
	// a missing row from txn; failed only moves an existing pending row.
	// refunded rows are never moved back.
	ApplyStatus(ctx context.Context, txn *db_models.Transaction) error
	FindByID(ctx context.Context, id string) (*db_models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]db_models.Transaction, error)
	ListByEmail(ctx context.Context, email string) ([]db_models.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) MergeUpsert(ctx context.Context, txn *db_models.Transaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(descriptiveColumns),
		}).
		Create(txn).Error
}

func (r *transactionRepository) ApplyStatus(ctx context.Context, txn *db_models.Transaction) error {
	if txn.Status == db_models.TxnStatusFailed {
		return r.db.WithContext(ctx).
			Model(&db_models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, db_models.TxnStatusPending).
			Updates(map[string]interface{}{
				"status":         txn.Status,
				"processor_ref":  txn.ProcessorRef,
				"payment_method": txn.PaymentMethod,
				"updated_at":     time.Now().Unix(),
			}).Error
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "processor_ref", "payment_method", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Neq{Column: clause.Column{Table: "transactions", Name: "status"}, Value: db_models.TxnStatusRefunded},
			}},
		}).
		Create(txn).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]db_models.Transaction, error) {
	var txns []db_models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}

func (r *transactionRepository) ListByEmail(ctx context.Context, email string) ([]db_models.Transaction, error) {
	var txns []db_models.Transaction
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}
