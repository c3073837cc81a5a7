// Package document holds the money arithmetic shared by estimates and invoices:
// line items, document-level charges and the derived totals.
//
// Amounts are decimals kept at full precision. Rounding to two places only
// happens when formatting for presentation.
package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one priced product entry. TotalPrice is derived by Recompute.
type LineItem struct {
	Name            string
	Description     string
	Quantity        decimal.Decimal
	Unit            Unit
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TotalPrice      decimal.Decimal
}

// Charges are the document-level adjustments applied on top of the subtotal.
type Charges struct {
	DiscountPercent decimal.Decimal
	LoadingCharges  decimal.Decimal
	TaxPercent      decimal.Decimal
}

// Totals are the derived document amounts.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// CustomerInfo is the contact snapshot captured when a document is created.
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// LineTotal returns quantity * unitPrice * (1 - discountPercent/100).
func LineTotal(quantity, unitPrice, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, apperr.Invalid("quantity", quantity.String(), "must not be negative")
	}

	if unitPrice.IsNegative() {
		return decimal.Zero, apperr.Invalid("unitPrice", unitPrice.String(), "must not be negative")
	}

	if err := checkPercent("discountPercent", discountPercent); err != nil {
		return decimal.Zero, err
	}

	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))

	return quantity.Mul(unitPrice).Mul(factor), nil
}

// ComputeTotals derives the document totals from items whose TotalPrice is current.
func ComputeTotals(items []LineItem, c Charges) (Totals, error) {
	if err := c.Validate(); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}

	discount := subtotal.Mul(c.DiscountPercent).Div(hundred)
	taxable := subtotal.Sub(discount).Add(c.LoadingCharges)
	tax := taxable.Mul(c.TaxPercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		TotalAmount:    taxable.Add(tax),
	}, nil
}

// Recompute validates each item, overwrites its TotalPrice and returns the
// document totals. Items are updated in place.
func Recompute(items []LineItem, c Charges) (Totals, error) {
	for i := range items {
		if err := items[i].Recompute(); err != nil {
			return Totals{}, indexed(i, err)
		}
	}

	return ComputeTotals(items, c)
}

// Validate checks the caller-supplied fields of the item.
func (it *LineItem) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return apperr.Invalid("name", it.Name, "is required")
	}

	if !it.Quantity.IsPositive() {
		return apperr.Invalid("quantity", it.Quantity.String(), "must be greater than zero")
	}

	if !it.Unit.Known() {
		return apperr.Invalid("unit", string(it.Unit), "unknown unit")
	}

	return nil
}

// Recompute validates the item and overwrites TotalPrice.
func (it *LineItem) Recompute() error {
	if err := it.Validate(); err != nil {
		return err
	}

	total, err := LineTotal(it.Quantity, it.UnitPrice, it.DiscountPercent)
	if err != nil {
		return err
	}

	it.TotalPrice = total

	return nil
}

func (c Charges) Validate() error {
	if err := checkPercent("discountPercent", c.DiscountPercent); err != nil {
		return err
	}

	if c.LoadingCharges.IsNegative() {
		return apperr.Invalid("loadingCharges", c.LoadingCharges.String(), "must not be negative")
	}

	return checkPercent("taxPercent", c.TaxPercent)
}

// CloneItems returns an independent copy of items.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}

	out := make([]LineItem, len(items))
	copy(out, items)

	return out
}

func checkPercent(field string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return apperr.Invalid(field, p.String(), "must be between 0 and 100")
	}

	return nil
}

// indexed prefixes the field of a ValidationError with the item position.
func indexed(i int, err error) error {
	ve, ok := err.(*apperr.ValidationError)
	if !ok {
		return err
	}

	return &apperr.ValidationError{
		Field:   fmt.Sprintf("items[%d].%s", i, ve.Field),
		Value:   ve.Value,
		Message: ve.Message,
	}
}
