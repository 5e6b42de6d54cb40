package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"account-balance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(balance string, version int64) *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Account{
		ID:            uuid.New(),
		AccountNumber: "12345",
		Balance:       decimal.RequireFromString(balance),
		Version:       version,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func accountColumnNames() []string {
	return []string{"id", "account_number", "balance", "version", "created_at", "updated_at"}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumnNames()).AddRow(
		a.ID, a.AccountNumber, a.BalanceString(), a.Version, a.CreatedAt, a.UpdatedAt,
	)
}

func TestAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount("500", 0)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.AccountNumber, "500.00", int64(0), a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount("0", 0)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.AccountNumber, "0.00", int64(0), a.CreatedAt, a.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = repo.Create(context.Background(), a)
	assert.ErrorIs(t, err, domain.ErrAccountExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount("1000.50", 4)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE account_number").
		WithArgs("12345").
		WillReturnRows(accountRow(a))

	result, err := repo.GetByNumber(context.Background(), "12345")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.Equal(t, "1000.50", result.BalanceString())
	assert.Equal(t, int64(4), result.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByNumber_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE account_number").
		WithArgs("99999").
		WillReturnRows(pgxmock.NewRows(accountColumnNames()))

	result, err := repo.GetByNumber(context.Background(), "99999")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByNumber_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE account_number").
		WithArgs("12345").
		WillReturnError(errors.New("conn closed"))

	result, err := repo.GetByNumber(context.Background(), "12345")
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestAccountRepo_CompareAndSwap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	next := newTestAccount("400.00", 3)
	stored := *next
	stored.Version = 4

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts .+ WHERE id = \\$2 AND version = \\$3").
		WithArgs("400.00", next.ID, int64(3)).
		WillReturnRows(accountRow(&stored))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.CompareAndSwap(context.Background(), tx, next, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Version)
	assert.Equal(t, "400.00", result.BalanceString())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_CompareAndSwap_StaleVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	next := newTestAccount("400.00", 3)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts").
		WithArgs("400.00", next.ID, int64(3)).
		WillReturnRows(pgxmock.NewRows(accountColumnNames()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.CompareAndSwap(context.Background(), tx, next, 3)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_CompareAndSwap_SerializationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	next := newTestAccount("1.00", 0)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts").
		WithArgs("1.00", next.ID, int64(0)).
		WillReturnError(&pgconn.PgError{Code: "40001"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.CompareAndSwap(context.Background(), tx, next, 0)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestAccountRepo_CompareAndSwap_OtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	next := newTestAccount("1.00", 0)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE accounts").
		WithArgs("1.00", next.ID, int64(0)).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "violates check constraint"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.CompareAndSwap(context.Background(), tx, next, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrVersionConflict)
}
