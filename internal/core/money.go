// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and bank exports into decimal values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a currency string to a signed decimal.
//
// It strips currency symbols, thousands separators and whitespace, and treats
// accounting-style parentheses as a negative sign. Returns ErrInvalidAmount for
// empty or non-numeric input.
//
// Examples:
//
//	ParseAmount("12.34")      -> 12.34
//	ParseAmount("$1,234.50")  -> 1234.5
//	ParseAmount("-45")        -> -45
//	ParseAmount("(19.99)")    -> -19.99
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '€', '£':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// RoundCurrency rounds to cents for presentation.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
