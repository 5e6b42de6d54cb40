// Package memory is a process-local ports.RecordStore. It honours the same
// version-guarded commit contract as the PostgreSQL store, so concurrent
// batches either commit against the version they read or see a conflict.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps accounts and their records in maps guarded by one RWMutex.
// Every value handed out is a copy.
type Store struct {
	mu           sync.RWMutex
	byNumber     map[string]*domain.Account
	transactions map[uuid.UUID][]domain.Transaction
	now          func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		byNumber:     make(map[string]*domain.Account),
		transactions: make(map[uuid.UUID][]domain.Transaction),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) FindAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byNumber[accountNumber]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (s *Store) CreateAccount(ctx context.Context, accountNumber string, openingBalance decimal.Decimal) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byNumber[accountNumber]; ok {
		return nil, domain.ErrAccountExists
	}
	now := s.now()
	a := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		Balance:       openingBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.byNumber[accountNumber] = a

	out := *a
	return &out, nil
}

// CommitAccount swaps in the new balance and appends records only when the
// stored version equals expectedVersion.
func (s *Store) CommitAccount(ctx context.Context, account *domain.Account, expectedVersion int64, records []domain.Transaction) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byNumber[account.AccountNumber]
	if !ok || current.ID != account.ID {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, account.AccountNumber)
	}
	if current.Version != expectedVersion {
		return nil, fmt.Errorf("%w: account %s at version %d, expected %d",
			domain.ErrVersionConflict, account.AccountNumber, current.Version, expectedVersion)
	}

	now := s.now()
	updated := *current
	updated.Balance = account.Balance
	updated.Version = current.Version + 1
	updated.UpdatedAt = now

	log := s.transactions[current.ID]
	for _, rec := range records {
		rec.ID = uuid.New()
		rec.AccountID = current.ID
		rec.RecordedAt = now
		log = append(log, rec)
	}
	s.transactions[current.ID] = log
	s.byNumber[account.AccountNumber] = &updated

	out := updated
	return &out, nil
}

func (s *Store) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Transaction
	for _, rec := range s.transactions[params.AccountID] {
		if params.Kind != nil && rec.Kind != *params.Kind {
			continue
		}
		matched = append(matched, rec)
	}

	total := int64(len(matched))
	start := params.Offset()
	if start < 0 || start >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if params.PageSize <= 0 || end > len(matched) {
		end = len(matched)
	}

	page := make([]domain.Transaction, end-start)
	copy(page, matched[start:end])
	return page, total, nil
}

// Ping always succeeds; the store lives in the process.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Name() string {
	return "memory"
}
