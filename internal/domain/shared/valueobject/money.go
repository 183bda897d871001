package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	MAD Currency = "MAD"
	EUR Currency = "EUR"
)

// DefaultCurrency is what every price in the shop is quoted in
const DefaultCurrency = MAD

// Money is an immutable amount in one currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyMAD wraps an amount in dirhams
func NewMoneyMAD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: MAD}
}

func ZeroMAD() Money {
	return NewMoneyMAD(decimal.Zero)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Display is the customer-facing form used in checkout messages: rounded to
// cents, trailing zeros dropped, then the code ("99.5 MAD", "250 MAD").
func (m Money) Display() string {
	return m.amount.Round(2).String() + " " + string(m.currency)
}

// String always shows two decimals, for logs and error messages
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}
