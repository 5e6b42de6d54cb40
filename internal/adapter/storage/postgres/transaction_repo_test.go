package postgres

import (
	"context"
	"testing"
	"time"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecords(accountID uuid.UUID, kinds ...domain.TransactionKind) []domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	records := make([]domain.Transaction, len(kinds))
	for i, k := range kinds {
		records[i] = domain.Transaction{
			ID:         uuid.New(),
			AccountID:  accountID,
			Kind:       k,
			Amount:     decimal.RequireFromString("12.50"),
			Position:   i,
			RecordedAt: now,
		}
	}
	return records
}

func txColumns() []string {
	return []string{"id", "account_id", "kind", "amount", "position", "recorded_at"}
}

func txRows(records []domain.Transaction) *pgxmock.Rows {
	rows := pgxmock.NewRows(txColumns())
	for _, t := range records {
		rows.AddRow(t.ID, t.AccountID, string(t.Kind), domain.FormatAmount(t.Amount), t.Position, t.RecordedAt)
	}
	return rows
}

func TestTransactionRepo_CreateBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	records := newTestRecords(uuid.New(), domain.TransactionKindCredit, domain.TransactionKindDebit)

	mock.ExpectBegin()
	batch := mock.ExpectBatch()
	for _, r := range records {
		batch.ExpectExec("INSERT INTO transactions").
			WithArgs(r.ID, r.AccountID, string(r.Kind), "12.50", r.Position, r.RecordedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreateBatch(context.Background(), tx, records)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CreateBatch_ReportsFailingRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	records := newTestRecords(uuid.New(), domain.TransactionKindCredit, domain.TransactionKindDebit)

	mock.ExpectBegin()
	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO transactions").
		WithArgs(records[0].ID, records[0].AccountID, "CREDIT", "12.50", 0, records[0].RecordedAt).
		WillReturnError(assert.AnError)
	batch.ExpectExec("INSERT INTO transactions").
		WithArgs(records[1].ID, records[1].AccountID, "DEBIT", "12.50", 1, records[1].RecordedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreateBatch(context.Background(), tx, records)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "insert transaction 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_CreateBatch_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, NewTransactionRepo(mock).CreateBatch(context.Background(), tx, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()
	records := newTestRecords(accountID, domain.TransactionKindDebit, domain.TransactionKindCredit)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE account_id").
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE account_id = \\$1 ORDER BY recorded_at, position LIMIT \\$2 OFFSET \\$3").
		WithArgs(accountID, 2, 2).
		WillReturnRows(txRows(records))

	result, total, err := repo.List(context.Background(), ports.TransactionListParams{
		AccountID: accountID,
		Page:      2,
		PageSize:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, result, 2)
	assert.Equal(t, domain.TransactionKindDebit, result[0].Kind)
	assert.Equal(t, "12.50", domain.FormatAmount(result[1].Amount))
	assert.Equal(t, 1, result[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_FilterByKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	accountID := uuid.New()
	kind := domain.TransactionKindCredit

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE account_id = \\$1 AND kind = \\$2").
		WithArgs(accountID, "CREDIT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE account_id = \\$1 AND kind = \\$2 .+ LIMIT \\$3 OFFSET \\$4").
		WithArgs(accountID, "CREDIT", 20, 0).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	result, total, err := repo.List(context.Background(), ports.TransactionListParams{
		AccountID: accountID,
		Kind:      &kind,
		Page:      1,
		PageSize:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
