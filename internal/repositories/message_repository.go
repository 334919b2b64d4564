package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bizdesk/internal/models/db_models"
)

type MessageRepository interface {
	CreateUserMessage(ctx context.Context, msg *db_models.UserMessage) error
	CreateAdminMessage(ctx context.Context, msg *db_models.AdminMessage) error
	ListAdminMessagesForUser(ctx context.Context, userID string) ([]db_models.AdminMessage, error)
	ListUserMessages(ctx context.Context, page, pageSize int) ([]db_models.UserMessage, error)
	MarkAdminMessageRead(ctx context.Context, id uuid.UUID, userID string) (bool, error)
	MarkUserMessageRead(ctx context.Context, id uuid.UUID) (bool, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateUserMessage(ctx context.Context, msg *db_models.UserMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) CreateAdminMessage(ctx context.Context, msg *db_models.AdminMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListAdminMessagesForUser(ctx context.Context, userID string) ([]db_models.AdminMessage, error) {
	var msgs []db_models.AdminMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) ListUserMessages(ctx context.Context, page, pageSize int) ([]db_models.UserMessage, error) {
	var msgs []db_models.UserMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&msgs).Error
	return msgs, err
}

// MarkAdminMessageRead only touches a message addressed to userID.
func (r *messageRepository) MarkAdminMessageRead(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.AdminMessage{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *messageRepository) MarkUserMessageRead(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.UserMessage{}).
		Where("id = ?", id).
		Update("read", true)
	return res.RowsAffected > 0, res.Error
}
