// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals. Rounding happens only when a value is
// formatted for display.
package core

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a signed decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Grouping separators are not accepted.
//
// Examples:
//   ParseAmount("-12.34") -> -12.34, nil
//   ParseAmount("12,5")   -> 12.5, nil
//   ParseAmount("1.2.3")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(body, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range body {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CurrencyFormatter renders amounts for human-readable text.
type CurrencyFormatter struct {
	Symbol   string
	Decimals int32
}

// DefaultFormatter renders whole rupees.
func DefaultFormatter() CurrencyFormatter {
	return CurrencyFormatter{Symbol: "₹", Decimals: 0}
}

// Format rounds half away from zero to f.Decimals and groups thousands
// (e.g. "-₹1,235").
func (f CurrencyFormatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(f.Decimals)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	layout := "#,###."
	if f.Decimals > 0 {
		layout += strings.Repeat("#", int(f.Decimals))
	}
	return sign + f.Symbol + humanize.FormatFloat(layout, rounded.InexactFloat64())
}
