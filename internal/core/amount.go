// Package core holds the domain types shared by the API, the storage
// layer and the analytics engine.
//
// This file contains amount parsing. Monetary values travel as decimal
// strings end to end; arithmetic uses shopspring/decimal so sums never
// accumulate floating-point drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a Decimal suitable for
// arithmetic. It accepts both dot (12.34) and comma (12,34) separators.
// The amount must be strictly positive; sign is carried by Type.
//
// Examples:
//
//	ParseAmount("500.00") -> 500, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("NaN")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders a Decimal back into the canonical two-digit
// string form used on the wire and in storage.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
