// Package core provides amount parsing, formatting and the exact integer
// rounding used by the summary calculators.
//
// Amounts are whole currency units (won); there is no fractional part.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	decHalf     = decimal.NewFromFloat(0.5)
	decHundred  = decimal.NewFromInt(100)
	decThousand = decimal.NewFromInt(1_000)
	decMillion  = decimal.NewFromInt(1_000_000)
)

// ParseAmount converts user input such as "50000", "50,000" or "50,000원" to a
// non-negative amount. Signs, decimals and any other characters are rejected.
//
// Examples:
//
//	ParseAmount("50,000")  -> 50000, nil
//	ParseAmount("1200원")   -> 1200, nil
//	ParseAmount("-1")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatWon renders an amount with thousands separators, e.g. "1,234,567원".
func FormatWon(amount int64) string {
	neg := amount < 0
	digits := strconv.FormatInt(amount, 10)
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	b.WriteString("원")
	return b.String()
}

// FormatShort renders chart-axis labels: 1.5M, 50K, 900.
func FormatShort(amount int64) string {
	d := decimal.NewFromInt(amount)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decMillion):
		s := d.Div(decMillion).StringFixed(1)
		return strings.TrimSuffix(s, ".0") + "M"
	case abs.GreaterThanOrEqual(decThousand):
		return d.Div(decThousand).StringFixed(0) + "K"
	default:
		return d.String()
	}
}

// roundRatio returns num/den rounded half up (toward +Inf). den must be non-zero.
func roundRatio(num, den int64) int64 {
	return decimal.NewFromInt(num).
		Div(decimal.NewFromInt(den)).
		Add(decHalf).
		Floor().
		IntPart()
}

// percentOf returns round(part / whole × 100), half up. whole must be non-zero.
func percentOf(part, whole int64) int64 {
	return decimal.NewFromInt(part).
		Mul(decHundred).
		Div(decimal.NewFromInt(whole)).
		Add(decHalf).
		Floor().
		IntPart()
}

// ceilRatio returns ceil(num/den). den must be positive.
func ceilRatio(num, den int64) int64 {
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Ceil().IntPart()
}
