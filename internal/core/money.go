// Package core provides the Finestra domain model: transactions,
// subscriptions, goals, settings, and money handling.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between paise and rupee representations.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed amount stored in paise to avoid floating-point
// precision issues in calculations. Negative values are expenses.
type Money struct {
	Paise int64
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Paise < 0 {
		return Money{Paise: -m.Paise}
	}
	return m
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Paise == 0
}

// FromRupees converts a rupee value to Money with half-up rounding.
func FromRupees(r float64) Money {
	if r < 0 {
		return Money{Paise: -int64(-r*100 + 0.5)}
	}
	return Money{Paise: int64(r*100 + 0.5)}
}

// MarshalJSON encodes the amount as a decimal rupee number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Rupees(), 'f', -1, 64)), nil
}

// UnmarshalJSON decodes a decimal rupee number.
func (m *Money) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = FromRupees(f)
	return nil
}

// ParseSignedAmount converts a signed decimal string to Money with half-up
// rounding on the third decimal place. A leading '-' marks an expense. Zero
// is accepted; callers that forbid zero (manual entry) check separately.
//
// Examples:
//
//	ParseSignedAmount("12.34")  -> 1234 paise
//	ParseSignedAmount("-150")   -> -15000 paise
//	ParseSignedAmount("12.346") -> 1235 paise (rounds up)
func ParseSignedAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || s == "." {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third.
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	paise := iv*100 + fracPaise
	if neg {
		paise = -paise
	}
	return Money{Paise: paise}, nil
}
