package postgres

import (
	"context"
	"fmt"
	"time"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RecordStore implements ports.RecordStore on PostgreSQL. A commit is one
// database transaction holding the version-guarded account UPDATE and the
// record INSERTs.
type RecordStore struct {
	accounts     ports.AccountRepository
	transactions ports.TransactionRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewRecordStore wires the repositories into a RecordStore.
func NewRecordStore(accounts ports.AccountRepository, transactions ports.TransactionRepository, transactor ports.DBTransactor, log zerolog.Logger) *RecordStore {
	return &RecordStore{
		accounts:     accounts,
		transactions: transactions,
		transactor:   transactor,
		log:          log,
	}
}

// NewPoolRecordStore builds a RecordStore and its repositories from one pool.
func NewPoolRecordStore(pool Pool, log zerolog.Logger) *RecordStore {
	return NewRecordStore(NewAccountRepo(pool), NewTransactionRepo(pool), NewTransactor(pool), log)
}

func (s *RecordStore) FindAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.accounts.GetByNumber(ctx, accountNumber)
}

func (s *RecordStore) CreateAccount(ctx context.Context, accountNumber string, openingBalance decimal.Decimal) (*domain.Account, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	account := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		Balance:       openingBalance,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// CommitAccount persists the new balance and records atomically. Records get
// their ID and the commit timestamp here; the caller's slice is not modified.
func (s *RecordStore) CommitAccount(ctx context.Context, account *domain.Account, expectedVersion int64, records []domain.Transaction) (*domain.Account, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	updated, err := s.accounts.CompareAndSwap(ctx, dbTx, account, expectedVersion)
	if err != nil {
		s.rollback(ctx, dbTx)
		return nil, err
	}

	stamped := make([]domain.Transaction, len(records))
	for i, rec := range records {
		rec.ID = uuid.New()
		rec.AccountID = updated.ID
		rec.RecordedAt = updated.UpdatedAt
		stamped[i] = rec
	}

	if err := s.transactions.CreateBatch(ctx, dbTx, stamped); err != nil {
		s.rollback(ctx, dbTx)
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return nil, fmt.Errorf("%w: commit aborted: %v", domain.ErrVersionConflict, err)
		}
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

func (s *RecordStore) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	return s.transactions.List(ctx, params)
}

func (s *RecordStore) rollback(ctx context.Context, dbTx pgx.Tx) {
	if err := dbTx.Rollback(ctx); err != nil {
		s.log.Warn().Err(err).Msg("rollback failed")
	}
}
