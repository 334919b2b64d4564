package utils

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidPage        = errors.New("invalid page parameter")
	ErrInvalidPageSize    = errors.New("invalid page size parameter")
	ErrDatabaseError      = errors.New("database error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")

	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidCurrency        = errors.New("currency must be a three-letter code")
	ErrUnknownProcessor       = errors.New("unknown payment processor")
	ErrProcessorNotConfigured = errors.New("payment processor is not configured")
	ErrProcessorFailure       = errors.New("payment processor error")
	ErrWebhookNotConfigured   = errors.New("webhook secret is not configured")
	ErrInvalidSignature       = errors.New("webhook signature verification failed")
	ErrPaymentNotSuccessful   = errors.New("payment was not successful")
	ErrMissingOrderContext    = errors.New("order context could not be resolved")

	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrInvalidTicketStatus  = errors.New("ticket status must be open or closed")
	ErrMessageNotFound      = errors.New("message not found")
	ErrUploadNotFound       = errors.New("upload not found")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrStorageFailure       = errors.New("object storage error")
)
