// Package core provides the shared domain primitives: calendar dates,
// monetary amounts and validation sentinels.
//
// Money is decimal-based. The documents these amounts live in are mutated by
// long chains of small additions and subtractions, and binary floats drift
// under that load, so amounts are kept in decimal form from parse to persist.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount with exact decimal semantics.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney builds a Money from a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromFloat converts a float input at the API boundary. Rounded to two
// fractional digits on the way in, so float noise never reaches storage.
func MoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f).Round(2)}
}

// ParseAmount parses a user-entered amount. Both dot and comma decimal
// separators are accepted; the value is rounded half-up to cents.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d.Round(2)}, nil
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Cents returns the amount in integer minor units.
func (m Money) Cents() int64 {
	return m.d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Float returns the amount as a float64 for display only.
func (m Money) Float() float64 {
	f, _ := m.d.Float64()
	return f
}

func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d)}
}

func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Clamp bounds the amount into [lo, hi].
func (m Money) Clamp(lo, hi Money) Money {
	if m.Cmp(lo) < 0 {
		return lo
	}
	if m.Cmp(hi) > 0 {
		return hi
	}
	return m
}

// Div divides the amount by n, rounded to cents.
func (m Money) Div(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{d: m.d.Div(decimal.NewFromInt(n)).Round(2)}
}

// PercentOf returns m/total*100 as a float for display, 0 when total is zero.
func (m Money) PercentOf(total Money) float64 {
	if total.IsZero() {
		return 0
	}
	f, _ := m.d.Div(total.d).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

// Validate rejects negative amounts.
func (m Money) Validate() error {
	if m.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON emits a plain JSON number so stored documents keep the shape
// the original exports used.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	*m = Money{d: d}
	return nil
}

var _ json.Marshaler = Money{}
