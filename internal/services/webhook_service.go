package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

type WebhookService interface {
	// HandleWebhook verifies body against the processor's signature headers,
	// then audits the event and applies any status transition it carries.
	HandleWebhook(ctx context.Context, processor string, body []byte, header http.Header) error
}

type webhookService struct {
	processors map[dbm.PaymentMethod]PaymentProcessor
	events     repositories.PaymentEventRepository
	txns       repositories.TransactionRepository
	feed       ChangeFeed
	logger     *zap.Logger
}

func NewWebhookService(
	events repositories.PaymentEventRepository,
	txns repositories.TransactionRepository,
	feed ChangeFeed,
	logger *zap.Logger,
	processors ...PaymentProcessor,
) WebhookService {
	byMethod := make(map[dbm.PaymentMethod]PaymentProcessor, len(processors))
	for _, p := range processors {
		byMethod[p.Method()] = p
	}
	return &webhookService{processors: byMethod, events: events, txns: txns, feed: feed, logger: logger}
}

func (s *webhookService) HandleWebhook(ctx context.Context, processor string, body []byte, header http.Header) error {
	proc, ok := s.processors[dbm.PaymentMethod(strings.ToLower(processor))]
	if !ok {
		return utils.ErrUnknownProcessor
	}

	event, err := proc.VerifyWebhook(ctx, body, header)
	if err != nil {
		s.logger.Warn("webhook rejected", zap.String("processor", processor), zap.Error(err))
		return err
	}
	if event.ID == "" {
		return fmt.Errorf("%w: event without id", utils.ErrInvalidRequest)
	}

	audit := &dbm.PaymentEvent{
		EventID:       event.ID,
		Processor:     event.Processor,
		EventType:     event.Type,
		TransactionID: event.Key,
		Payload:       datatypes.JSON(event.Payload),
		ReceivedAt:    utils.NowUnixSeconds(),
	}
	if err := s.events.Upsert(ctx, audit); err != nil {
		return fmt.Errorf("%w: audit %s: %v", utils.ErrDatabaseError, event.ID, err)
	}

	s.logger.Info("webhook received",
		zap.String("processor", string(event.Processor)),
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("transaction_id", event.Key))

	if event.Status == "" {
		return nil
	}
	if event.Key == "" || event.UserID == "" {
		s.logger.Warn("webhook carries no transaction key, audit only",
			zap.String("event_id", event.ID), zap.String("type", event.Type))
		return nil
	}

	txn := &dbm.Transaction{
		ID:            event.Key,
		UserID:        event.UserID,
		Email:         event.Email,
		PackageKey:    event.PackageKey,
		Amount:        event.Amount,
		Currency:      event.Currency,
		Status:        event.Status,
		PaymentMethod: event.Processor,
		ProcessorRef:  event.ProcessorRef,
	}
	if err := s.txns.ApplyStatus(ctx, txn); err != nil {
		return fmt.Errorf("%w: apply %s to %s: %v", utils.ErrDatabaseError, event.Status, event.Key, err)
	}

	if err := s.feed.Publish(ctx, event.UserID); err != nil {
		s.logger.Warn("publish transaction change failed", zap.String("user_id", event.UserID), zap.Error(err))
	}
	return nil
}
