package domain

import (
	"errors"
	"fmt"
)

// Money represents a monetary value with currency.
// Amount is stored in the smallest currency unit (cents) to avoid
// floating point issues in charge arithmetic.
type Money struct {
	amount   int64
	currency string
}

var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrNegativeMoney    = errors.New("money amount cannot be negative")
	ErrInvalidQuantity  = errors.New("quantity must be non-negative")
)

// NewMoney creates a new Money value object. amount is in cents.
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeMoney
	}
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// ZeroMoney creates a zero money value.
func ZeroMoney(currency string) Money {
	return Money{amount: 0, currency: currency}
}

// Amount returns the amount in cents.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add adds two money values (must have same currency).
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply multiplies the amount by a quantity.
func (m Money) Multiply(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, ErrInvalidQuantity
	}
	return Money{amount: m.amount * int64(qty), currency: m.currency}, nil
}

// String returns a string representation of the money.
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", float64(m.amount)/100.0, m.currency)
}
