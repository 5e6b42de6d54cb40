package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAccountNumberLength bounds the external account key.
const MaxAccountNumberLength = 32

// Account is a balance holder guarded by a monotonically increasing version.
// Version starts at 0 and grows by exactly one on every committed batch.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BalanceString renders the balance with two fractional digits.
func (a *Account) BalanceString() string {
	return FormatAmount(a.Balance)
}

// WithBalance returns a copy of the account carrying a new balance. The version
// is left untouched; only a store commit advances it.
func (a *Account) WithBalance(balance decimal.Decimal) *Account {
	next := *a
	next.Balance = balance
	return &next
}

// ValidateAccountNumber checks the external account key.
func ValidateAccountNumber(number string) error {
	if number == "" || len(number) > MaxAccountNumberLength {
		return ErrInvalidAccountNumber
	}
	if strings.TrimFunc(number, isAccountNumberRune) != "" {
		return ErrInvalidAccountNumber
	}
	return nil
}

func isAccountNumberRune(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_'
}
