package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bizdesk/internal/models/db_models"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *db_models.Upload) error
	Confirm(ctx context.Context, id uuid.UUID, fileURL string) error
	MarkDeleting(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Upload, error)
	ListByUser(ctx context.Context, userID string) ([]db_models.Upload, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]db_models.Upload, error)
	// ListStale returns rows stuck in state since before the unix-second cutoff.
	ListStale(ctx context.Context, state db_models.UploadState, before int64, limit int) ([]db_models.Upload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *db_models.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) Confirm(ctx context.Context, id uuid.UUID, fileURL string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":    db_models.UploadStateConfirmed,
			"file_url": fileURL,
		}).Error
}

func (r *uploadRepository) MarkDeleting(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Upload{}).
		Where("id = ?", id).
		Update("state", db_models.UploadStateDeleting).Error
}

func (r *uploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&db_models.Upload{}, "id = ?", id).Error
}

func (r *uploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Upload, error) {
	var upload db_models.Upload
	err := r.db.WithContext(ctx).First(&upload, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) ListByUser(ctx context.Context, userID string) ([]db_models.Upload, error) {
	var uploads []db_models.Upload
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, db_models.UploadStateConfirmed).
		Order("upload_time DESC").
		Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) List(ctx context.Context, userID string, page, pageSize int) ([]db_models.Upload, error) {
	var uploads []db_models.Upload
	q := r.db.WithContext(ctx).Where("state = ?", db_models.UploadStateConfirmed)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Order("upload_time DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) ListStale(ctx context.Context, state db_models.UploadState, before int64, limit int) ([]db_models.Upload, error) {
	var uploads []db_models.Upload
	err := r.db.WithContext(ctx).
		Where("state = ? AND updated_at < ?", state, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&uploads).Error
	return uploads, err
}
