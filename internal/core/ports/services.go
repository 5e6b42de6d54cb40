package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"account-balance-service/internal/core/domain"
)

// AccountService is the boundary-facing balance engine.
type AccountService interface {
	// ApplyBatch applies ops in order with all-or-nothing semantics and returns
	// the committed account snapshot.
	ApplyBatch(ctx context.Context, accountNumber string, ops []domain.Operation) (*domain.Account, error)
	// GetBalance reads the current account snapshot without mutating it.
	GetBalance(ctx context.Context, accountNumber string) (*domain.Account, error)
	OpenAccount(ctx context.Context, accountNumber string, openingBalance string) (*domain.Account, error)
	ListTransactions(ctx context.Context, accountNumber string, filter TransactionFilter) ([]domain.Transaction, int64, error)
}

// TransactionFilter is the caller-side view of TransactionListParams.
type TransactionFilter struct {
	Kind     *domain.TransactionKind
	Page     int
	PageSize int
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult is the outcome of a single RateLimiter.Allow call.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // unix seconds
}
