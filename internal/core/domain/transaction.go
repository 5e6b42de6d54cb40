package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a balance movement.
type TransactionKind string

const (
	TransactionKindDebit  TransactionKind = "DEBIT"
	TransactionKindCredit TransactionKind = "CREDIT"
)

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	return k == TransactionKindDebit || k == TransactionKindCredit
}

// Transaction is an immutable log entry for one applied operation.
// ID and RecordedAt are assigned by the store at commit time; Position is the
// operation's index inside its batch and orders records sharing a RecordedAt.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Kind       TransactionKind `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Position   int             `json:"position"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Operation is one raw entry of a batch as received from a caller.
type Operation struct {
	Kind   string
	Amount string
}
