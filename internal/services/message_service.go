package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

type MessageService interface {
	SendToStaff(ctx context.Context, caller Caller, req request_models.SendUserMessageRequest) (*dbm.UserMessage, error)
	SendToUser(ctx context.Context, caller Caller, req request_models.SendAdminMessageRequest) (*dbm.AdminMessage, error)
	Inbox(ctx context.Context, caller Caller) ([]dbm.AdminMessage, error)
	StaffInbox(ctx context.Context, page, pageSize int) ([]dbm.UserMessage, error)
	MarkRead(ctx context.Context, caller Caller, id uuid.UUID) error
	MarkStaffRead(ctx context.Context, id uuid.UUID) error
}

type messageService struct {
	repo  repositories.MessageRepository
	users repositories.UserRepository
}

func NewMessageService(repo repositories.MessageRepository, users repositories.UserRepository) MessageService {
	return &messageService{repo: repo, users: users}
}

func (s *messageService) displayName(ctx context.Context, id, fallback string) string {
	if u, err := s.users.FindByID(ctx, id); err == nil && u != nil {
		return u.Name()
	}
	return fallback
}

func (s *messageService) SendToStaff(ctx context.Context, caller Caller, req request_models.SendUserMessageRequest) (*dbm.UserMessage, error) {
	msg := &dbm.UserMessage{
		UserID:   caller.UserID,
		UserName: s.displayName(ctx, caller.UserID, caller.Email),
		Subject:  req.Subject,
		Body:     req.Body,
	}
	if err := s.repo.CreateUserMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return msg, nil
}

func (s *messageService) SendToUser(ctx context.Context, caller Caller, req request_models.SendAdminMessageRequest) (*dbm.AdminMessage, error) {
	recipient, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if recipient == nil {
		return nil, utils.ErrAccountNotFound
	}

	msg := &dbm.AdminMessage{
		UserID:    recipient.ID,
		AdminID:   caller.UserID,
		AdminName: s.displayName(ctx, caller.UserID, caller.Email),
		Subject:   req.Subject,
		Body:      req.Body,
	}
	if err := s.repo.CreateAdminMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return msg, nil
}

func (s *messageService) Inbox(ctx context.Context, caller Caller) ([]dbm.AdminMessage, error) {
	msgs, err := s.repo.ListAdminMessagesForUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return msgs, nil
}

func (s *messageService) StaffInbox(ctx context.Context, page, pageSize int) ([]dbm.UserMessage, error) {
	msgs, err := s.repo.ListUserMessages(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return msgs, nil
}

func (s *messageService) MarkRead(ctx context.Context, caller Caller, id uuid.UUID) error {
	ok, err := s.repo.MarkAdminMessageRead(ctx, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if !ok {
		return utils.ErrMessageNotFound
	}
	return nil
}

func (s *messageService) MarkStaffRead(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.MarkUserMessageRead(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if !ok {
		return utils.ErrMessageNotFound
	}
	return nil
}
