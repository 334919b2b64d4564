package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	resp "bizdesk/internal/models/response_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

const (
	defaultSuccessPath = "/payment/success"
	defaultCancelPath  = "/payment/cancelled"
	purchasesPath      = "/dashboard/purchases"
)

type PaymentConfig struct {
	AppBaseURL      string
	DefaultCurrency string
}

type PaymentService interface {
	// CreateCheckout opens a hosted checkout session and returns its URL.
	// Nothing is written to the transaction ledger.
	CreateCheckout(ctx context.Context, caller Caller, req request_models.CheckoutRequest) (*resp.CheckoutResponse, error)
	// Reconcile records the order the browser returned with. Replays with the
	// same order token land on the same transaction.
	Reconcile(ctx context.Context, caller Caller, req request_models.ReconcileRequest) (*resp.ReconcileResponse, error)
}

type paymentService struct {
	cfg        PaymentConfig
	processors map[dbm.PaymentMethod]PaymentProcessor
	orders     OrderStore
	txns       repositories.TransactionRepository
	feed       ChangeFeed
	logger     *zap.Logger
	now        func() time.Time
}

func NewPaymentService(
	cfg PaymentConfig,
	orders OrderStore,
	txns repositories.TransactionRepository,
	feed ChangeFeed,
	logger *zap.Logger,
	processors ...PaymentProcessor,
) PaymentService {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	byMethod := make(map[dbm.PaymentMethod]PaymentProcessor, len(processors))
	for _, p := range processors {
		byMethod[p.Method()] = p
	}
	return &paymentService{
		cfg:        cfg,
		processors: byMethod,
		orders:     orders,
		txns:       txns,
		feed:       feed,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, caller Caller, req request_models.CheckoutRequest) (*resp.CheckoutResponse, error) {
	if !req.TotalAmount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}

	method := dbm.PaymentMethodStripe
	if req.Processor != "" {
		method = dbm.PaymentMethod(strings.ToLower(req.Processor))
	}
	proc, ok := s.processors[method]
	if !ok {
		return nil, utils.ErrUnknownProcessor
	}
	if !proc.Configured() {
		return nil, fmt.Errorf("%s: %w", method, utils.ErrProcessorNotConfigured)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if !utils.IsCurrencyCode(currency) {
		return nil, utils.ErrInvalidCurrency
	}
	if req.UserID != "" && req.UserID != caller.UserID && !caller.IsStaff() {
		return nil, utils.ErrForbidden
	}
	email := req.CustomerEmail
	if email == "" {
		email = caller.Email
	}

	snap := &OrderSnapshot{
		UserID:         caller.UserID,
		Email:          email,
		Amount:         req.TotalAmount,
		Currency:       currency,
		PackageKey:     req.PackageKey,
		PackageTitle:   req.PackageTitle,
		Country:        req.Country,
		Company:        req.Company,
		PaymentMethod:  string(method),
		AddOns:         req.AddOns,
		Features:       req.Features,
		Breakdown:      req.Breakdown,
		CouponCode:     req.CouponCode,
		CouponPercent:  req.CouponPercent,
		DiscountAmount: req.DiscountAmount,
		SavedAt:        s.now().UnixMilli(),
	}
	key, err := IdempotencyKey(snap.UserID, snap.SavedAt)
	if err != nil {
		return nil, err
	}
	token, err := s.orders.Save(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	successQuery := url.Values{}
	successQuery.Set("status", "success")
	successQuery.Set("payment", string(method))
	successQuery.Set("pkg", req.PackageKey)
	successQuery.Set("amount", req.TotalAmount.String())
	successQuery.Set("currency", currency)
	successQuery.Set("title", req.PackageTitle)
	successQuery.Set("order", token)

	cancelQuery := url.Values{}
	cancelQuery.Set("status", "cancelled")
	cancelQuery.Set("payment", string(method))
	cancelQuery.Set("pkg", req.PackageKey)

	session, err := proc.CreateCheckout(ctx, CheckoutParams{
		IdempotencyKey: key,
		UserID:         snap.UserID,
		Email:          email,
		PackageKey:     req.PackageKey,
		PackageTitle:   req.PackageTitle,
		Amount:         req.TotalAmount,
		Currency:       currency,
		SuccessURL:     s.returnURL(req.SuccessPath, defaultSuccessPath, successQuery),
		CancelURL:      s.returnURL(req.CancelPath, defaultCancelPath, cancelQuery),
	})
	if err != nil {
		s.logger.Warn("checkout session failed",
			zap.String("processor", string(method)),
			zap.String("user_id", caller.UserID),
			zap.Error(err))
		return nil, err
	}

	snap.ProcessorRef = session.ProcessorRef
	if err := s.orders.Update(ctx, snap); err != nil {
		s.logger.Warn("order token update failed", zap.String("token", token), zap.Error(err))
	}

	s.logger.Info("checkout session created",
		zap.String("processor", string(method)),
		zap.String("transaction_id", key),
		zap.String("processor_ref", session.ProcessorRef))

	return &resp.CheckoutResponse{URL: session.URL, OrderToken: token, TransactionID: key}, nil
}

// returnURL joins the app base with a client supplied path. Anything that is
// not a plain absolute path falls back to def.
func (s *paymentService) returnURL(path, def string, q url.Values) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.ContainsAny(path, "?#") {
		path = def
	}
	return strings.TrimRight(s.cfg.AppBaseURL, "/") + path + "?" + q.Encode()
}

func (s *paymentService) Reconcile(ctx context.Context, caller Caller, req request_models.ReconcileRequest) (*resp.ReconcileResponse, error) {
	if req.Status != "success" {
		return nil, utils.ErrPaymentNotSuccessful
	}

	snap, err := s.resolveOrder(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	if snap.UserID == "" {
		return nil, utils.ErrMissingOrderContext
	}
	if !snap.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}

	savedAt := snap.SavedAt
	if savedAt <= 0 {
		// no nonce: the key is not stable across retries
		savedAt = s.now().UnixMilli()
	}
	key, err := IdempotencyKey(snap.UserID, savedAt)
	if err != nil {
		return nil, err
	}
	if snap.SavedAt <= 0 {
		s.logger.Warn("reconcile without order token, using unstable key",
			zap.String("user_id", snap.UserID), zap.String("transaction_id", key))
	}

	method := dbm.ParsePaymentMethod(snap.PaymentMethod)
	if method == dbm.PaymentMethodPaypal {
		proc, ok := s.processors[method]
		if !ok {
			return nil, fmt.Errorf("paypal: %w", utils.ErrProcessorNotConfigured)
		}
		orderID := req.Token
		if orderID == "" {
			orderID = snap.ProcessorRef
		}
		if err := proc.Capture(ctx, orderID); err != nil {
			return nil, err
		}
		if snap.ProcessorRef == "" {
			snap.ProcessorRef = orderID
		}
	}

	txn := &dbm.Transaction{
		ID:             key,
		UserID:         snap.UserID,
		Email:          snap.Email,
		PackageKey:     snap.PackageKey,
		PackageTitle:   snap.PackageTitle,
		Country:        snap.Country,
		Company:        snap.Company,
		Amount:         snap.Amount,
		Currency:       snap.Currency,
		Status:         dbm.TxnStatusPending,
		PaymentMethod:  method,
		ProcessorRef:   snap.ProcessorRef,
		AddOns:         snap.AddOns,
		Features:       snap.Features,
		Breakdown:      snap.Breakdown,
		CouponCode:     snap.CouponCode,
		CouponPercent:  snap.CouponPercent,
		DiscountAmount: snap.DiscountAmount,
	}
	if err := s.txns.MergeUpsert(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	if err := s.feed.Publish(ctx, snap.UserID); err != nil {
		s.logger.Warn("publish transaction change failed", zap.String("user_id", snap.UserID), zap.Error(err))
	}

	return &resp.ReconcileResponse{TransactionID: key, Redirect: purchasesPath}, nil
}

// resolveOrder prefers the stored snapshot and falls back to the redirect
// parameters plus the session identity.
func (s *paymentService) resolveOrder(ctx context.Context, caller Caller, req request_models.ReconcileRequest) (*OrderSnapshot, error) {
	if req.Order != "" {
		snap, err := s.orders.Load(ctx, req.Order)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if snap != nil {
			if snap.UserID != caller.UserID {
				return nil, utils.ErrForbidden
			}
			return snap, nil
		}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		amount = decimal.Zero
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !utils.IsCurrencyCode(currency) {
		currency = s.cfg.DefaultCurrency
	}
	return &OrderSnapshot{
		UserID:        caller.UserID,
		Email:         caller.Email,
		Amount:        amount,
		Currency:      currency,
		PackageKey:    req.Pkg,
		PackageTitle:  req.Title,
		PaymentMethod: req.Payment,
	}, nil
}
