package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"
	"account-balance-service/pkg/apperror"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AccountServiceImpl implements ports.AccountService on top of a RecordStore
// using optimistic concurrency: every attempt re-reads the account, validates
// the whole batch against the fresh balance and commits conditionally on the
// version it read.
type AccountServiceImpl struct {
	store         ports.RecordStore
	policy        RetryPolicy
	maxOperations int
	log           zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl. maxOperations <= 0
// disables the batch size limit.
func NewAccountService(store ports.RecordStore, policy RetryPolicy, maxOperations int, log zerolog.Logger) *AccountServiceImpl {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	return &AccountServiceImpl{
		store:         store,
		policy:        policy,
		maxOperations: maxOperations,
		log:           log,
	}
}

// ApplyBatch applies ops to the account in order, all or nothing.
func (s *AccountServiceImpl) ApplyBatch(ctx context.Context, accountNumber string, ops []domain.Operation) (*domain.Account, error) {
	if s.maxOperations > 0 && len(ops) > s.maxOperations {
		return nil, apperror.ErrBatchTooLarge(fmt.Errorf("%w: %d operations, limit %d", domain.ErrBatchTooLarge, len(ops), s.maxOperations))
	}

	attempts := 0
	operation := func() (*domain.Account, error) {
		attempts++
		return s.attempt(ctx, accountNumber, ops)
	}
	notify := func(err error, wait time.Duration) {
		s.log.Debug().
			Err(err).
			Str("account_number", accountNumber).
			Int("attempt", attempts).
			Dur("backoff", wait).
			Msg("version conflict, retrying batch")
	}

	account, err := backoff.RetryNotifyWithData(operation, s.policy.newBackOff(ctx), notify)
	if err == nil {
		s.log.Info().
			Str("account_number", accountNumber).
			Int("operations", len(ops)).
			Int64("version", account.Version).
			Int("attempts", attempts).
			Msg("batch committed")
		return account, nil
	}

	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		s.log.Warn().
			Str("account_number", accountNumber).
			Int("attempts", attempts).
			Msg("batch abandoned after repeated version conflicts")
		return nil, apperror.ErrConcurrencyExhausted(
			fmt.Errorf("%w: account %s, %d attempts", domain.ErrConcurrencyExhausted, accountNumber, attempts))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, apperror.ErrRequestCancelled(err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Error().Err(err).Str("account_number", accountNumber).Msg("record store failure")
	}
	return nil, apperror.FromDomain(err)
}

// attempt runs one READ -> VALIDATE -> COMMIT cycle. Only a version conflict
// is returned as retryable; everything else is wrapped as permanent. An
// account removed between read and commit is reported as not found.
func (s *AccountServiceImpl) attempt(ctx context.Context, accountNumber string, ops []domain.Operation) (*domain.Account, error) {
	account, err := s.store.FindAccount(ctx, accountNumber)
	if err != nil {
		return nil, backoff.Permanent(storeError("find account", err))
	}
	if account == nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber))
	}

	balance, records, err := domain.ApplyOperations(account, ops)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if len(records) == 0 {
		return account, nil
	}

	committed, err := s.store.CommitAccount(ctx, account.WithBalance(balance), account.Version, records)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, backoff.Permanent(err)
		}
		return nil, backoff.Permanent(storeError("commit account", err))
	}
	return committed, nil
}

// GetBalance returns the current account snapshot.
func (s *AccountServiceImpl) GetBalance(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.store.FindAccount(ctx, accountNumber)
	if err != nil {
		return nil, apperror.FromDomain(storeError("find account", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber))
	}
	return account, nil
}

// OpenAccount provisions an account. An empty openingBalance opens at zero.
func (s *AccountServiceImpl) OpenAccount(ctx context.Context, accountNumber string, openingBalance string) (*domain.Account, error) {
	if err := domain.ValidateAccountNumber(accountNumber); err != nil {
		return nil, apperror.ErrInvalidAccountNumber(fmt.Errorf("%w: %q", err, accountNumber))
	}

	balance := decimal.Zero
	if openingBalance != "" {
		parsed, err := domain.ParseAmount(openingBalance)
		if err != nil {
			return nil, apperror.ErrInvalidAmount(err)
		}
		if parsed.IsNegative() {
			return nil, apperror.ErrInvalidAmount(fmt.Errorf("%w: opening balance must not be negative", domain.ErrInvalidAmount))
		}
		balance = parsed
	}

	account, err := s.store.CreateAccount(ctx, accountNumber, balance)
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, apperror.ErrAccountExists(fmt.Errorf("%w: %s", err, accountNumber))
		}
		return nil, apperror.FromDomain(storeError("create account", err))
	}

	s.log.Info().
		Str("account_number", account.AccountNumber).
		Str("opening_balance", account.BalanceString()).
		Msg("account opened")
	return account, nil
}

// ListTransactions returns one page of the account's transaction log, oldest first.
func (s *AccountServiceImpl) ListTransactions(ctx context.Context, accountNumber string, filter ports.TransactionFilter) ([]domain.Transaction, int64, error) {
	account, err := s.GetBalance(ctx, accountNumber)
	if err != nil {
		return nil, 0, err
	}

	params := ports.TransactionListParams{
		AccountID: account.ID,
		Kind:      filter.Kind,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	records, total, err := s.store.ListTransactions(ctx, params)
	if err != nil {
		return nil, 0, apperror.FromDomain(storeError("list transactions", err))
	}
	return records, total, nil
}

// storeError classifies a non-conflict store failure. Context errors stay
// reachable through the chain so callers can tell a timeout apart.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
