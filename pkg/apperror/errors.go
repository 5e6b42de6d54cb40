package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"account-balance-service/internal/core/domain"
)

// AppError is a structured error that maps to HTTP responses and CLI exit
// output. Err keeps the domain cause so errors.Is still matches the kind.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound(err error) *AppError {
	return Wrap("ACC_001", "Account not found", http.StatusNotFound, err)
}

func ErrAccountExists(err error) *AppError {
	return Wrap("ACC_002", "Account already exists", http.StatusConflict, err)
}

func ErrInvalidAccountNumber(err error) *AppError {
	return Wrap("ACC_003", "Invalid account number", http.StatusBadRequest, err)
}

// ---- Transactions (TXN) ----

func ErrInvalidAmount(err error) *AppError {
	return Wrap("TXN_001", "Invalid amount", http.StatusBadRequest, err)
}

func ErrInsufficientFunds(err error) *AppError {
	return Wrap("TXN_002", "Insufficient funds", http.StatusUnprocessableEntity, err)
}

func ErrInvalidKind(err error) *AppError {
	return Wrap("TXN_003", "Invalid transaction type, expected DEBIT or CREDIT", http.StatusBadRequest, err)
}

func ErrConcurrencyExhausted(err error) *AppError {
	return Wrap("TXN_004", "Account is being updated concurrently, no operation was applied, try again", http.StatusConflict, err)
}

func ErrBatchTooLarge(err error) *AppError {
	return Wrap("TXN_005", "Too many operations in batch", http.StatusBadRequest, err)
}

// ---- Authentication (AUTH) ----

func ErrMissingToken() *AppError {
	return New("AUTH_001", "Missing bearer token", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Record store unavailable", http.StatusServiceUnavailable, err)
}

func ErrRequestCancelled(err error) *AppError {
	return Wrap("SYS_003", "Request cancelled or timed out", http.StatusRequestTimeout, err)
}

// Validation returns a VAL_001 request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// FromDomain maps a domain error kind to its AppError. Errors that already are
// AppErrors pass through; unknown errors become SYS_001.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrRequestCancelled(err)
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrAccountNotFound(err)
	case errors.Is(err, domain.ErrAccountExists):
		return ErrAccountExists(err)
	case errors.Is(err, domain.ErrInvalidAccountNumber):
		return ErrInvalidAccountNumber(err)
	case errors.Is(err, domain.ErrInvalidAmount):
		return ErrInvalidAmount(err)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ErrInsufficientFunds(err)
	case errors.Is(err, domain.ErrInvalidKind):
		return ErrInvalidKind(err)
	case errors.Is(err, domain.ErrBatchTooLarge):
		return ErrBatchTooLarge(err)
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		return ErrConcurrencyExhausted(err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ErrStoreUnavailable(err)
	default:
		return InternalError(err)
	}
}
