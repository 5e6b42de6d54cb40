package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept for money values.
const AmountScale = 2

// maxAmountLength bounds the text accepted by ParseAmount. NUMERIC(19,2)
// needs far fewer characters, and the bound keeps exponent checks exact.
const maxAmountLength = 32

// maxMagnitude is the first value that no longer fits NUMERIC(19,2).
var maxMagnitude = decimal.New(1, 19-AmountScale)

// FormatAmount renders d with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// ParseAmount converts external text into an exact amount. It does not check
// the sign; ApplyDebit and ApplyCredit do.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if len(text) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("%w: amount longer than %d characters", ErrInvalidAmount, maxAmountLength)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, text)
	}
	// Exponent bounds come first: Round rescales through 10^|exp|.
	if d.IsZero() {
		return decimal.New(0, -AmountScale), nil
	}
	if d.Exponent() > 19-AmountScale {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}
	if d.Exponent() < -(maxAmountLength + AmountScale) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, text, AmountScale)
	}
	if !d.Equal(d.Round(AmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, text, AmountScale)
	}
	if d.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}
	return d.Round(AmountScale), nil
}

// ParseKind accepts DEBIT or CREDIT, ignoring surrounding whitespace.
func ParseKind(text string) (TransactionKind, error) {
	k := TransactionKind(strings.TrimSpace(text))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, text)
	}
	return k, nil
}

// ApplyDebit subtracts amount from balance.
func ApplyDebit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return balance, fmt.Errorf("%w: debit must be positive, got %s", ErrInvalidAmount, FormatAmount(amount))
	}
	if amount.GreaterThan(balance) {
		return balance, fmt.Errorf("%w: balance %s, debit %s", ErrInsufficientFunds, FormatAmount(balance), FormatAmount(amount))
	}
	return balance.Sub(amount), nil
}

// ApplyCredit adds amount to balance.
func ApplyCredit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return balance, fmt.Errorf("%w: credit must be positive, got %s", ErrInvalidAmount, FormatAmount(amount))
	}
	next := balance.Add(amount)
	if next.GreaterThanOrEqual(maxMagnitude) {
		return balance, fmt.Errorf("%w: credit %s overflows balance %s", ErrInvalidAmount, FormatAmount(amount), FormatAmount(balance))
	}
	return next, nil
}

// Apply runs a single already-parsed movement against balance.
func Apply(balance decimal.Decimal, kind TransactionKind, amount decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case TransactionKindDebit:
		return ApplyDebit(balance, amount)
	case TransactionKindCredit:
		return ApplyCredit(balance, amount)
	default:
		return balance, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// ApplyOperations folds ops over balance in order and returns the final
// balance plus one pending record per operation. The first failing operation
// aborts the whole fold and no records are returned.
func ApplyOperations(account *Account, ops []Operation) (decimal.Decimal, []Transaction, error) {
	balance := account.Balance
	records := make([]Transaction, 0, len(ops))

	for i, op := range ops {
		kind, err := ParseKind(op.Kind)
		if err != nil {
			return account.Balance, nil, fmt.Errorf("operation %d: %w", i, err)
		}
		amount, err := ParseAmount(op.Amount)
		if err != nil {
			return account.Balance, nil, fmt.Errorf("operation %d: %w", i, err)
		}
		balance, err = Apply(balance, kind, amount)
		if err != nil {
			return account.Balance, nil, fmt.Errorf("operation %d: %w", i, err)
		}
		records = append(records, Transaction{
			AccountID: account.ID,
			Kind:      kind,
			Amount:    amount,
			Position:  i,
		})
	}

	return balance, records, nil
}
