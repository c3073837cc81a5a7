package view

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

// FormatAmount renders a money value with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return document.Format(d)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
