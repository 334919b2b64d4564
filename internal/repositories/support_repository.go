package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bizdesk/internal/models/db_models"
)

type SupportRepository interface {
	NextTicketSeq(ctx context.Context, userID string) (int64, error)
	CreateTicket(ctx context.Context, ticket *db_models.SupportTicket) error
	FindTicket(ctx context.Context, id uuid.UUID) (*db_models.SupportTicket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]db_models.SupportTicket, error)
	ListTickets(ctx context.Context, status string, page, pageSize int) ([]db_models.SupportTicket, error)
	UpdateTicketStatus(ctx context.Context, id uuid.UUID, status db_models.TicketStatus) (bool, error)
	AddFeedback(ctx context.Context, feedback *db_models.TicketFeedback) error
	ListFeedback(ctx context.Context, ticketID uuid.UUID) ([]db_models.TicketFeedback, error)
}

type supportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

// NextTicketSeq atomically bumps the user's counter. A missing counter is
// seeded from the tickets the user already has.
func (r *supportRepository) NextTicketSeq(ctx context.Context, userID string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO ticket_counters (user_id, value)
		VALUES (?, (SELECT COUNT(*) FROM support_tickets WHERE user_id = ?) + 1)
		ON CONFLICT (user_id) DO UPDATE SET value = ticket_counters.value + 1
		RETURNING value`, userID, userID).
		Scan(&value).Error
	return value, err
}

func (r *supportRepository) CreateTicket(ctx context.Context, ticket *db_models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *supportRepository) FindTicket(ctx context.Context, id uuid.UUID) (*db_models.SupportTicket, error) {
	var ticket db_models.SupportTicket
	err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *supportRepository) ListTicketsByUser(ctx context.Context, userID string) ([]db_models.SupportTicket, error) {
	var tickets []db_models.SupportTicket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *supportRepository) ListTickets(ctx context.Context, status string, page, pageSize int) ([]db_models.SupportTicket, error) {
	var tickets []db_models.SupportTicket
	q := r.db.WithContext(ctx).Model(&db_models.SupportTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tickets).Error
	return tickets, err
}

func (r *supportRepository) UpdateTicketStatus(ctx context.Context, id uuid.UUID, status db_models.TicketStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.SupportTicket{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *supportRepository) AddFeedback(ctx context.Context, feedback *db_models.TicketFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *supportRepository) ListFeedback(ctx context.Context, ticketID uuid.UUID) ([]db_models.TicketFeedback, error) {
	var items []db_models.TicketFeedback
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
