package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"account-balance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RecordStore is everything the balance engine needs from durable storage.
// Implementations must make CommitAccount atomic across the balance update and
// the record inserts.
type RecordStore interface {
	// FindAccount returns (nil, nil) when no account has the given number.
	FindAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	// CommitAccount writes account.Balance and records if the stored version still
	// equals expectedVersion, bumping the version by one. A stale version yields
	// domain.ErrVersionConflict and nothing is written.
	CommitAccount(ctx context.Context, account *domain.Account, expectedVersion int64, records []domain.Transaction) (*domain.Account, error)
	// CreateAccount provisions a new account at version 0. Duplicate numbers
	// yield domain.ErrAccountExists.
	CreateAccount(ctx context.Context, accountNumber string, openingBalance decimal.Decimal) (*domain.Account, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// AccountRepository defines persistence operations for accounts.
// CompareAndSwap runs inside a transaction opened by a DBTransactor.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	CompareAndSwap(ctx context.Context, tx pgx.Tx, account *domain.Account, expectedVersion int64) (*domain.Account, error)
}

// TransactionRepository defines persistence operations for transaction records.
type TransactionRepository interface {
	CreateBatch(ctx context.Context, tx pgx.Tx, records []domain.Transaction) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing records.
type TransactionListParams struct {
	AccountID uuid.UUID
	Kind      *domain.TransactionKind
	Page      int
	PageSize  int
}

// Offset returns the row offset for the requested page.
func (p TransactionListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
