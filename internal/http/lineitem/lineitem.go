// Package lineitem holds the JSON shapes of line items, charges and totals
// shared by the estimate and invoice handlers.
package lineitem

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

// UnitNormalizer resolves the unit text clients send.
type UnitNormalizer interface {
	Normalize(ctx context.Context, raw string) (document.Unit, error)
}

type ItemRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit" validate:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type ChargesRequest struct {
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	LoadingCharges  decimal.Decimal `json:"loadingCharges"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

func (c ChargesRequest) Charges() document.Charges {
	return document.Charges{
		DiscountPercent: c.DiscountPercent,
		LoadingCharges:  c.LoadingCharges,
		TaxPercent:      c.TaxPercent,
	}
}

// Items converts request items, resolving each unit. A nil slice stays nil.
func Items(ctx context.Context, units UnitNormalizer, in []ItemRequest) ([]document.LineItem, error) {
	if in == nil {
		return nil, nil
	}

	out := make([]document.LineItem, 0, len(in))

	for i, it := range in {
		u, err := units.Normalize(ctx, it.Unit)
		if err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				return nil, apperr.Invalid(fmt.Sprintf("items[%d].unit", i), it.Unit, "unknown unit")
			}

			return nil, err
		}

		out = append(out, document.LineItem{
			Name:            it.Name,
			Description:     it.Description,
			Quantity:        it.Quantity,
			Unit:            u,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
		})
	}

	return out, nil
}

type ItemResponse struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            document.Unit   `json:"unit"`
	UnitLabel       string          `json:"unitLabel"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

type TotalsResponse struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	LoadingCharges  decimal.Decimal `json:"loadingCharges"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

type CustomerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func ToItems(items []document.LineItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{
			Name:            it.Name,
			Description:     it.Description,
			Quantity:        it.Quantity,
			Unit:            it.Unit,
			UnitLabel:       it.Unit.Label(),
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TotalPrice:      it.TotalPrice,
		}
	}

	return out
}

func ToTotals(c document.Charges, t document.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:        t.Subtotal,
		DiscountPercent: c.DiscountPercent,
		DiscountAmount:  t.DiscountAmount,
		LoadingCharges:  c.LoadingCharges,
		TaxableAmount:   t.TaxableAmount,
		TaxPercent:      c.TaxPercent,
		TaxAmount:       t.TaxAmount,
		TotalAmount:     t.TotalAmount,
	}
}

func ToCustomer(c document.CustomerInfo) CustomerResponse {
	return CustomerResponse{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}
