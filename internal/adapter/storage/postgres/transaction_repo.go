package postgres

import (
	"context"
	"fmt"
	"strings"

	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// CreateBatch inserts records within the commit transaction, in batch order.
// All inserts go out in one round trip.
func (r *TransactionRepo) CreateBatch(ctx context.Context, tx pgx.Tx, records []domain.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO transactions (id, account_id, kind, amount, position, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for _, t := range records {
		batch.Queue(query,
			t.ID, t.AccountID, string(t.Kind), domain.FormatAmount(t.Amount), t.Position, t.RecordedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for _, t := range records {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return fmt.Errorf("insert transaction %d: %w", t.Position, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close insert batch: %w", err)
	}
	return nil
}

// List returns one page of an account's records ordered by recorded_at then
// position, plus the total matching count.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var (
		conditions []string
		args       []any
	)
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("account_id = $%d", argIdx))
	args = append(args, params.AccountID)
	argIdx++

	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, string(*params.Kind))
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT id, account_id, kind, amount::text, position, recorded_at
		FROM transactions %s ORDER BY recorded_at, position LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var (
			t      domain.Transaction
			kind   string
			amount string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &kind, &amount, &t.Position, &t.RecordedAt); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		t.Kind = domain.TransactionKind(kind)
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, 0, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}
