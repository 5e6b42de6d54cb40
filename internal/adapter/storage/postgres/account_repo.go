package postgres

import (
	"context"
	"errors"
	"fmt"

	"account-balance-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Postgres error codes handled explicitly.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const accountColumns = `id, account_number, balance::text, version, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account row at its initial version.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, account_number, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.AccountNumber, a.BalanceString(), a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByNumber fetches an account by its external number without locking.
// Returns (nil, nil) when the account does not exist.
func (r *AccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by number: %w", err)
	}
	return a, nil
}

// CompareAndSwap stores account.Balance and bumps the version, but only if the
// row still carries expectedVersion. Zero matched rows means another commit
// won the race and is reported as domain.ErrVersionConflict.
func (r *AccountRepo) CompareAndSwap(ctx context.Context, tx pgx.Tx, account *domain.Account, expectedVersion int64) (*domain.Account, error) {
	query := `UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
		RETURNING ` + accountColumns

	updated, err := scanAccount(tx.QueryRow(ctx, query, account.BalanceString(), account.ID, expectedVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isRetryable(err) {
			return nil, fmt.Errorf("%w: account %s expected version %d", domain.ErrVersionConflict, account.AccountNumber, expectedVersion)
		}
		return nil, fmt.Errorf("compare and swap account: %w", err)
	}
	return updated, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a       domain.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.AccountNumber, &balance, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse stored balance %q: %w", balance, err)
	}
	a.Balance = parsed
	return &a, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isRetryable reports server-side aborts that a fresh attempt can resolve.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
