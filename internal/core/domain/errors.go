package domain

import "errors"

// Error kinds surfaced by the balance engine. Callers match them with errors.Is;
// the wrapping message carries the details.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = errors.New("account already exists")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidKind          = errors.New("invalid transaction kind")
	ErrBatchTooLarge        = errors.New("batch exceeds operation limit")
	ErrConcurrencyExhausted = errors.New("concurrent updates exhausted retries, no operation was applied")
	ErrStoreUnavailable     = errors.New("record store unavailable")
)

// ErrVersionConflict is returned by a RecordStore when the stored account
// version no longer matches the expected one. It never leaves the service layer.
var ErrVersionConflict = errors.New("account version conflict")
