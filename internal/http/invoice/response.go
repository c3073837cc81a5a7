package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/http/lineitem"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

// Response is the JSON shape of an invoice.
type Response struct {
	ID            uuid.UUID                 `json:"id"`
	Number        string                    `json:"invoiceNumber"`
	EstimateID    *uuid.UUID                `json:"estimateId,omitempty"`
	TraderID      uuid.UUID                 `json:"traderId"`
	CustomerID    uuid.UUID                 `json:"customerId"`
	Customer      lineitem.CustomerResponse `json:"customerInfo"`
	Items         []lineitem.ItemResponse   `json:"items"`
	Totals        lineitem.TotalsResponse   `json:"totals"`
	PaidAmount    decimal.Decimal           `json:"paidAmount"`
	BalanceAmount decimal.Decimal           `json:"balanceAmount"`
	Status        invoice.Status            `json:"status"`
	DueDate       time.Time                 `json:"dueDate"`
	Payments      []paymentResponse         `json:"payments"`
	Notes         string                    `json:"notes,omitempty"`
	Terms         string                    `json:"terms,omitempty"`
	SentAt        *time.Time                `json:"sentAt,omitempty"`
	ViewedAt      *time.Time                `json:"viewedAt,omitempty"`
	PaidAt        *time.Time                `json:"paidAt,omitempty"`
	CancelledAt   *time.Time                `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

type paymentResponse struct {
	ID            uuid.UUID             `json:"id"`
	Amount        decimal.Decimal       `json:"amount"`
	Method        invoice.PaymentMethod `json:"method"`
	TransactionID string                `json:"transactionId,omitempty"`
	PaymentDate   time.Time             `json:"paymentDate"`
	Status        invoice.PaymentStatus `json:"status"`
	Notes         string                `json:"notes,omitempty"`
}

type pageResponse struct {
	Invoices   []Response `json:"invoices"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

type paymentLinkResponse struct {
	Link    string          `json:"paymentLink"`
	Amount  decimal.Decimal `json:"amount"`
	Invoice string          `json:"invoiceNumber"`
}

func ToResponse(inv *invoice.Invoice) Response {
	resp := Response{
		ID:            inv.ID,
		Number:        inv.Number,
		EstimateID:    inv.EstimateID,
		TraderID:      inv.TraderID,
		CustomerID:    inv.CustomerID,
		Customer:      lineitem.ToCustomer(inv.Customer),
		Items:         lineitem.ToItems(inv.Items),
		Totals:        lineitem.ToTotals(inv.Charges, inv.Totals),
		PaidAmount:    inv.PaidAmount,
		BalanceAmount: inv.BalanceAmount,
		Status:        inv.Status,
		DueDate:       inv.DueDate,
		Payments:      make([]paymentResponse, len(inv.Payments)),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		SentAt:        inv.SentAt,
		ViewedAt:      inv.ViewedAt,
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}

	for i, p := range inv.Payments {
		resp.Payments[i] = paymentResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			Method:        p.Method,
			TransactionID: p.TransactionID,
			PaymentDate:   p.PaymentDate,
			Status:        p.Status,
			Notes:         p.Notes,
		}
	}

	return resp
}

func toPage(p *invoice.Page) pageResponse {
	resp := pageResponse{
		Invoices:   make([]Response, len(p.Invoices)),
		Total:      p.Total,
		Page:       p.Page,
		TotalPages: p.TotalPages,
	}

	for i, inv := range p.Invoices {
		resp.Invoices[i] = ToResponse(inv)
	}

	return resp
}
