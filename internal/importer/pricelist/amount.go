package pricelist

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmpty = errors.New("empty value")

var currencyMarks = []string{"₹", "inr", "rs.", "rs", "%"}

// parseNumber reads quantities, prices and percentages as written in price
// lists: "1,23,456.50", "1.234,56", "₹ 450", "Rs. 12", "10%".
//
// When both separators appear the last one is the decimal point. A lone comma
// followed by one or two digits is a decimal comma; otherwise commas group.
func parseNumber(s string) (decimal.Decimal, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	for _, m := range currencyMarks {
		clean = strings.ReplaceAll(clean, m, "")
	}

	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return decimal.Zero, errEmpty
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0 && strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 <= 2:
		clean = strings.Replace(clean, ",", ".", 1)
	default:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
