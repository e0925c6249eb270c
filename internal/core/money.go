// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts coming from the
// transactions API and converting between cents and decimal representations.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to signed cents.
//
// It accepts a dot decimal separator and a leading sign, and rounds half away
// from zero on the third decimal place. Commas are rejected: wire amounts are
// US-formatted, so "1,000" is a grouped thousand, never one unit.
//
// Examples:
//
//	ParseAmount("12.34")   -> 1234, nil
//	ParseAmount("-110.71") -> -11071, nil
//	ParseAmount("12.345")  -> 1235, nil
//	ParseAmount("-0.005")  -> -1, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return decimalToCents(d)
}

func decimalToCents(d decimal.Decimal) (int64, error) {
	cents := d.Round(2).Shift(2)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// largest magnitude a single amount may have; sums are checked separately
const maxCents = (1<<63 - 1) / 100

// Decimal returns the amount as an exact decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount as a plain decimal string ("-110.71").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns the sum of two amounts, or ErrBalanceOverflow when it does not
// fit in int64 cents.
func (m Money) Add(o Money) (Money, error) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return Money{}, ErrBalanceOverflow
	}
	return Money{Cents: sum}, nil
}

// IsNegative reports whether the amount is a debit.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// MarshalJSON emits the amount as a decimal string so no precision is lost
// by JSON consumers that parse numbers as floats.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return ErrInvalidAmount
	}
	var s string
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidAmount
		}
	} else {
		s = raw
	}
	cents, err := ParseAmount(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
