// Package core provides the transaction model, amount parsing and
// list filtering shared by the ledger, storage and UI layers.
package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

// ParseAmount converts a decimal string to a positive amount rounded to two
// decimal places.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// FormatAmount renders an amount with the currency symbol and two decimals.
func FormatAmount(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return "-" + CurrencySymbol + d.Neg().StringFixed(2)
	}
	return CurrencySymbol + d.StringFixed(2)
}

// FormatSignedAmount prefixes income with "+" and expenses with "-".
func FormatSignedAmount(t TransactionType, v float64) string {
	if t == Income {
		return "+" + FormatAmount(v)
	}
	return "-" + FormatAmount(v)
}

// FormatDate renders a date like "Jan 15, 2024".
func FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

// FormatTimestamp renders a creation instant in RFC 3339, UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DisplayName upper-cases the first letter of a category key and leaves the
// rest alone ("eating out" -> "Eating out").
func DisplayName(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if size == 0 {
		return category
	}
	// A Caser keeps state between calls and must not be shared.
	return cases.Upper(language.English).String(string(r)) + category[size:]
}
