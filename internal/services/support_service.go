package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

type SupportServiceInterface interface {
	CreateTicket(ctx context.Context, caller Caller, req request_models.CreateTicketRequest) (*dbm.SupportTicket, error)
	MyTickets(ctx context.Context, caller Caller) ([]dbm.SupportTicket, error)
	ListTickets(ctx context.Context, status string, page, pageSize int) ([]dbm.SupportTicket, error)
	UpdateStatus(ctx context.Context, ticketID uuid.UUID, status string) error
	AddFeedback(ctx context.Context, caller Caller, ticketID uuid.UUID, message string) (*dbm.TicketFeedback, error)
	ListFeedback(ctx context.Context, caller Caller, ticketID uuid.UUID) ([]dbm.TicketFeedback, error)
}

type SupportService struct {
	repo   repositories.SupportRepository
	users  repositories.UserRepository
	mail   IMailService
	logger *zap.Logger
}

func NewSupportService(
	repo repositories.SupportRepository,
	users repositories.UserRepository,
	mail IMailService,
	logger *zap.Logger,
) SupportServiceInterface {
	return &SupportService{repo: repo, users: users, mail: mail, logger: logger}
}

func (s *SupportService) CreateTicket(ctx context.Context, caller Caller, req request_models.CreateTicketRequest) (*dbm.SupportTicket, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	displayName, email := "", caller.Email
	if user != nil {
		displayName = user.DisplayName
		if user.Email != "" {
			email = user.Email
		}
	}

	seq, err := s.repo.NextTicketSeq(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket counter: %v", utils.ErrDatabaseError, err)
	}

	ticket := &dbm.SupportTicket{
		TicketNo:    FormatTicketNo(TicketPrefix(displayName, email), seq),
		UserID:      caller.UserID,
		UserName:    displayName,
		PackageName: req.PackageName,
		Subject:     req.Subject,
		Message:     req.Message,
		Status:      dbm.TicketStatusOpen,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return ticket, nil
}

func (s *SupportService) MyTickets(ctx context.Context, caller Caller) ([]dbm.SupportTicket, error) {
	tickets, err := s.repo.ListTicketsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return tickets, nil
}

func (s *SupportService) ListTickets(ctx context.Context, status string, page, pageSize int) ([]dbm.SupportTicket, error) {
	if status != "" && !validTicketStatus(status) {
		return nil, utils.ErrInvalidTicketStatus
	}
	tickets, err := s.repo.ListTickets(ctx, status, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return tickets, nil
}

func (s *SupportService) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status string) error {
	if !validTicketStatus(status) {
		return utils.ErrInvalidTicketStatus
	}
	found, err := s.repo.UpdateTicketStatus(ctx, ticketID, dbm.TicketStatus(status))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if !found {
		return utils.ErrTicketNotFound
	}
	return nil
}

func (s *SupportService) AddFeedback(ctx context.Context, caller Caller, ticketID uuid.UUID, message string) (*dbm.TicketFeedback, error) {
	ticket, err := s.repo.FindTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if ticket == nil {
		return nil, utils.ErrTicketNotFound
	}

	adminName := caller.Email
	if admin, err := s.users.FindByID(ctx, caller.UserID); err == nil && admin != nil {
		adminName = admin.Name()
	}

	feedback := &dbm.TicketFeedback{
		TicketID:  ticket.ID,
		AdminID:   caller.UserID,
		AdminName: adminName,
		Message:   message,
	}
	if err := s.repo.AddFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.notifyOwner(ctx, ticket)
	return feedback, nil
}

func (s *SupportService) ListFeedback(ctx context.Context, caller Caller, ticketID uuid.UUID) ([]dbm.TicketFeedback, error) {
	ticket, err := s.repo.FindTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if ticket == nil {
		return nil, utils.ErrTicketNotFound
	}
	if ticket.UserID != caller.UserID && !caller.IsStaff() {
		return nil, utils.ErrForbidden
	}

	items, err := s.repo.ListFeedback(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return items, nil
}

// notifyOwner is best effort; a mail failure never fails the reply.
func (s *SupportService) notifyOwner(ctx context.Context, ticket *dbm.SupportTicket) {
	owner, err := s.users.FindByID(ctx, ticket.UserID)
	if err != nil || owner == nil || owner.Email == "" {
		return
	}
	subject := fmt.Sprintf("New reply on ticket %s", ticket.TicketNo)
	body := "Our team has replied to your support ticket. Sign in to read the response."
	if err := s.mail.SendMailToNotifyUser(owner.Email, subject, body, "View ticket", "/dashboard/support"); err != nil {
		s.logger.Warn("ticket reply mail failed", zap.String("ticket_no", ticket.TicketNo), zap.Error(err))
	}
}

func validTicketStatus(status string) bool {
	return status == string(dbm.TicketStatusOpen) || status == string(dbm.TicketStatusClosed)
}
