// Package money handles bounty amounts in fixed-point token base units.
// The bounty currency is a 6-decimal fungible token, so "10.00" is
// 10_000_000 base units. Arithmetic stays in integers; decimal strings
// exist only at the edges (user input, ledger wire format, rendering).
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Decimals is the number of decimal places of the bounty token.
const Decimals = 6

var unit int64 = 1_000_000

// Amount is a token amount in base units.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Parse converts a decimal string like "10.00" into base units.
// Negative amounts and fractions finer than the token's decimals are
// rejected. An empty string parses as zero.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	if strings.HasPrefix(s, "-") {
		return Zero, fmt.Errorf("amount must not be negative: %s", s)
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Decimals {
		return Zero, fmt.Errorf("amount %s exceeds %d decimal places", s, Decimals)
	}

	// Both parts must be bare digit runs. strconv alone would accept an
	// embedded sign ("1.-5") and misvalue the amount.
	if !digits(whole) || (frac != "" && !digits(frac)) {
		return Zero, fmt.Errorf("invalid amount %q", s)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	var f int64
	if frac != "" {
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		for i := len(frac); i < Decimals; i++ {
			f *= 10
		}
	}

	if w > (1<<62)/unit {
		return Zero, fmt.Errorf("amount %s out of range", s)
	}

	return Amount(w*unit + f), nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParse parses a decimal string and panics on failure. Test helper.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBase wraps a raw base-unit value.
func FromBase(v int64) Amount {
	return Amount(v)
}

// Base returns the raw base-unit value, used for persistence and the
// ledger wire format.
func (a Amount) Base() int64 {
	return int64(a)
}

// String renders the amount as a decimal string with at least two decimal
// places ("10.00", "0.50", "1.234567").
func (a Amount) String() string {
	v := int64(a)
	neg := v < 0
	if neg {
		v = -v
	}

	whole := v / unit
	frac := fmt.Sprintf("%06d", v%unit)

	// Trim trailing zeros but keep cents.
	for len(frac) > 2 && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}

	out := fmt.Sprintf("%d.%s", whole, frac)
	if neg {
		out = "-" + out
	}
	return out
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// IsPositive reports whether the amount is strictly positive.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Cmp compares two amounts, returning -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
