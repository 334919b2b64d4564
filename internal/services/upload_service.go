package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

// FileInput is an incoming multipart file.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type SweepResult struct {
	Pending  int
	Deleting int
}

type UploadServiceInterface interface {
	TransactionsForUser(ctx context.Context, userID string) ([]dbm.Transaction, error)
	AssignFile(ctx context.Context, caller Caller, form request_models.AdminUploadForm, file FileInput) (*dbm.Upload, error)
	UserUpload(ctx context.Context, caller Caller, form request_models.UserUploadForm, file FileInput) (*dbm.Upload, error)
	MyUploads(ctx context.Context, caller Caller) ([]dbm.Upload, error)
	ListUploads(ctx context.Context, userID string, page, pageSize int) ([]dbm.Upload, error)
	DownloadURL(ctx context.Context, caller Caller, id uuid.UUID) (string, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
	Sweep(ctx context.Context, grace time.Duration) (SweepResult, error)
}

type UploadService struct {
	uploads repositories.UploadRepository
	users   repositories.UserRepository
	txns    repositories.TransactionRepository
	storage ObjectStorage
	mail    IMailService
	logger  *zap.Logger
	now     func() time.Time
}

func NewUploadService(
	uploads repositories.UploadRepository,
	users repositories.UserRepository,
	txns repositories.TransactionRepository,
	storage ObjectStorage,
	mail IMailService,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		uploads: uploads,
		users:   users,
		txns:    txns,
		storage: storage,
		mail:    mail,
		logger:  logger,
		now:     time.Now,
	}
}

// TransactionsForUser looks transactions up by owner id and falls back to the
// owner's email for rows written before the id was recorded.
func (s *UploadService) TransactionsForUser(ctx context.Context, userID string) ([]dbm.Transaction, error) {
	txns, err := s.txns.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if len(txns) > 0 {
		return txns, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return nil, utils.ErrAccountNotFound
	}
	if user.Email == "" {
		return []dbm.Transaction{}, nil
	}
	txns, err = s.txns.ListByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return txns, nil
}

func (s *UploadService) AssignFile(ctx context.Context, caller Caller, form request_models.AdminUploadForm, file FileInput) (*dbm.Upload, error) {
	owner, err := s.users.FindByID(ctx, form.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if owner == nil {
		return nil, utils.ErrAccountNotFound
	}

	row := &dbm.Upload{
		Kind:       dbm.UploadKindAdmin,
		UserID:     owner.ID,
		UserName:   owner.Name(),
		UploaderID: caller.UserID,
		Country:    owner.Country,
	}
	if caller.Email != "" {
		row.UploaderName = caller.Email
	}

	if form.TransactionID != "" {
		txn, err := s.txns.FindByID(ctx, form.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if txn == nil || !ownsTransaction(owner, txn) {
			return nil, utils.ErrTransactionNotFound
		}
		row.TransactionID = txn.ID
		row.PackageName = txn.PackageTitle
		if row.Country == "" {
			row.Country = txn.Country
		}
	}

	now := s.now()
	key := fmt.Sprintf("admin-uploads/%d_%s", now.UnixMilli(), safeFileName(file.Name))
	if err := s.store(ctx, row, key, file, now); err != nil {
		return nil, err
	}

	s.notifyAssigned(owner, row)
	return row, nil
}

func (s *UploadService) UserUpload(ctx context.Context, caller Caller, form request_models.UserUploadForm, file FileInput) (*dbm.Upload, error) {
	row := &dbm.Upload{
		Kind:        dbm.UploadKindUser,
		UserID:      caller.UserID,
		UploaderID:  caller.UserID,
		PackageName: form.PackageName,
	}
	if user, err := s.users.FindByID(ctx, caller.UserID); err == nil && user != nil {
		row.UserName = user.Name()
		row.UploaderName = user.Name()
		row.Country = user.Country
	}

	if form.TransactionID != "" {
		txn, err := s.txns.FindByID(ctx, form.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if txn == nil || txn.UserID != caller.UserID {
			return nil, utils.ErrTransactionNotFound
		}
		row.TransactionID = txn.ID
		if row.PackageName == "" {
			row.PackageName = txn.PackageTitle
		}
	}

	now := s.now()
	key := fmt.Sprintf("user-uploads/%s/%d_%s", safeFileName(caller.UserID), now.UnixMilli(), safeFileName(file.Name))
	if err := s.store(ctx, row, key, file, now); err != nil {
		return nil, err
	}
	return row, nil
}

// store records the row as pending, writes the object and then confirms the
// row. A failed object write removes the pending row again.
func (s *UploadService) store(ctx context.Context, row *dbm.Upload, key string, file FileInput, now time.Time) error {
	row.FileName = path.Base(file.Name)
	row.ObjectPath = key
	row.ContentType = file.ContentType
	row.Size = file.Size
	row.State = dbm.UploadStatePending
	row.UploadTime = now.UnixMilli()

	if err := s.uploads.Create(ctx, row); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	url, err := s.storage.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		if derr := s.uploads.Delete(ctx, row.ID); derr != nil {
			s.logger.Error("pending upload cleanup failed", zap.String("upload_id", row.ID.String()), zap.Error(derr))
		}
		if errors.Is(err, utils.ErrStorageNotConfigured) {
			return err
		}
		return fmt.Errorf("%w: %v", utils.ErrStorageFailure, err)
	}

	if err := s.uploads.Confirm(ctx, row.ID, url); err != nil {
		// the sweeper removes the object and the row once the grace period passes
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	row.FileURL = url
	row.State = dbm.UploadStateConfirmed

	s.logger.Info("upload stored",
		zap.String("upload_id", row.ID.String()),
		zap.String("kind", string(row.Kind)),
		zap.String("user_id", row.UserID),
		zap.String("object", key))
	return nil
}

func (s *UploadService) MyUploads(ctx context.Context, caller Caller) ([]dbm.Upload, error) {
	rows, err := s.uploads.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return rows, nil
}

func (s *UploadService) ListUploads(ctx context.Context, userID string, page, pageSize int) ([]dbm.Upload, error) {
	rows, err := s.uploads.List(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return rows, nil
}

func (s *UploadService) DownloadURL(ctx context.Context, caller Caller, id uuid.UUID) (string, error) {
	row, err := s.visibleUpload(ctx, caller, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.URL(ctx, row.ObjectPath)
	if err != nil {
		if errors.Is(err, utils.ErrStorageNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", utils.ErrStorageFailure, err)
	}
	return url, nil
}

// Delete lets staff remove any upload and users remove their own user uploads.
func (s *UploadService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	row, err := s.visibleUpload(ctx, caller, id)
	if err != nil {
		return err
	}
	if !caller.IsStaff() && row.Kind != dbm.UploadKindUser {
		return utils.ErrForbidden
	}
	return s.remove(ctx, row)
}

func (s *UploadService) visibleUpload(ctx context.Context, caller Caller, id uuid.UUID) (*dbm.Upload, error) {
	row, err := s.uploads.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if row == nil || row.State != dbm.UploadStateConfirmed {
		return nil, utils.ErrUploadNotFound
	}
	if !caller.IsStaff() && row.UserID != caller.UserID {
		return nil, utils.ErrUploadNotFound
	}
	return row, nil
}

// remove marks the row deleting, deletes the object and then the row. When
// the object delete fails the row stays in deleting for the sweeper.
func (s *UploadService) remove(ctx context.Context, row *dbm.Upload) error {
	if row.State != dbm.UploadStateDeleting {
		if err := s.uploads.MarkDeleting(ctx, row.ID); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		row.State = dbm.UploadStateDeleting
	}
	if err := s.storage.Delete(ctx, row.ObjectPath); err != nil {
		s.logger.Warn("object delete failed, left for sweep",
			zap.String("upload_id", row.ID.String()),
			zap.String("object", row.ObjectPath),
			zap.Error(err))
		return nil
	}
	if err := s.uploads.Delete(ctx, row.ID); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

const sweepBatch = 100

// Sweep clears pending rows older than grace and retries rows stuck in deleting.
func (s *UploadService) Sweep(ctx context.Context, grace time.Duration) (SweepResult, error) {
	var res SweepResult
	cutoff := s.now().Add(-grace).Unix()

	pending, err := s.uploads.ListStale(ctx, dbm.UploadStatePending, cutoff, sweepBatch)
	if err != nil {
		return res, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	for i := range pending {
		row := &pending[i]
		if err := s.storage.Delete(ctx, row.ObjectPath); err != nil {
			s.logger.Debug("orphan object delete failed", zap.String("object", row.ObjectPath), zap.Error(err))
		}
		if err := s.uploads.Delete(ctx, row.ID); err != nil {
			return res, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		res.Pending++
	}

	deleting, err := s.uploads.ListStale(ctx, dbm.UploadStateDeleting, cutoff, sweepBatch)
	if err != nil {
		return res, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	for i := range deleting {
		row := &deleting[i]
		if err := s.storage.Delete(ctx, row.ObjectPath); err != nil {
			continue
		}
		if err := s.uploads.Delete(ctx, row.ID); err != nil {
			return res, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		res.Deleting++
	}
	return res, nil
}

func (s *UploadService) notifyAssigned(owner *dbm.User, row *dbm.Upload) {
	if owner.Email == "" {
		return
	}
	subject := "A new file is available"
	body := fmt.Sprintf("%s has been added to your account.", row.FileName)
	if row.PackageName != "" {
		body = fmt.Sprintf("%s has been added to your %s order.", row.FileName, row.PackageName)
	}
	if err := s.mail.SendMailToNotifyUser(owner.Email, subject, body, "View files", "/dashboard/files"); err != nil {
		s.logger.Warn("file assignment mail failed", zap.String("user_id", owner.ID), zap.Error(err))
	}
}

func ownsTransaction(owner *dbm.User, txn *dbm.Transaction) bool {
	if txn.UserID == owner.ID {
		return true
	}
	return owner.Email != "" && strings.EqualFold(txn.Email, owner.Email)
}

// safeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'.
func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
