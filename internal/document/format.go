package document

import "github.com/shopspring/decimal"

// Format renders an amount with two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
