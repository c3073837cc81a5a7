package estimate

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/lineitem"
)

type estimateResponse struct {
	ID                 uuid.UUID                 `json:"id"`
	Number             string                    `json:"estimateNumber"`
	TraderID           uuid.UUID                 `json:"traderId"`
	CustomerID         uuid.UUID                 `json:"customerId"`
	Customer           lineitem.CustomerResponse `json:"customerInfo"`
	Items              []lineitem.ItemResponse   `json:"items"`
	Totals             lineitem.TotalsResponse   `json:"totals"`
	Status             estimate.Status           `json:"status"`
	ValidUntil         time.Time                 `json:"validUntil"`
	Expired            bool                      `json:"expired"`
	Notes              string                    `json:"notes,omitempty"`
	Terms              string                    `json:"terms,omitempty"`
	SentAt             *time.Time                `json:"sentAt,omitempty"`
	ViewedAt           *time.Time                `json:"viewedAt,omitempty"`
	AcceptedAt         *time.Time                `json:"acceptedAt,omitempty"`
	RejectedAt         *time.Time                `json:"rejectedAt,omitempty"`
	RejectionReason    string                    `json:"rejectionReason,omitempty"`
	ConvertedToInvoice bool                      `json:"convertedToInvoice"`
	InvoiceID          *uuid.UUID                `json:"invoiceId,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

type pageResponse struct {
	Estimates  []estimateResponse `json:"estimates"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}

func toResponse(e *estimate.Estimate, now time.Time) estimateResponse {
	return estimateResponse{
		ID:                 e.ID,
		Number:             e.Number,
		TraderID:           e.TraderID,
		CustomerID:         e.CustomerID,
		Customer:           lineitem.ToCustomer(e.Customer),
		Items:              lineitem.ToItems(e.Items),
		Totals:             lineitem.ToTotals(e.Charges, e.Totals),
		Status:             e.Status,
		ValidUntil:         e.ValidUntil,
		Expired:            e.IsExpired(now),
		Notes:              e.Notes,
		Terms:              e.Terms,
		SentAt:             e.SentAt,
		ViewedAt:           e.ViewedAt,
		AcceptedAt:         e.AcceptedAt,
		RejectedAt:         e.RejectedAt,
		RejectionReason:    e.RejectionReason,
		ConvertedToInvoice: e.ConvertedToInvoice,
		InvoiceID:          e.InvoiceID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func toPage(p *estimate.Page, now time.Time) pageResponse {
	resp := pageResponse{
		Estimates:  make([]estimateResponse, len(p.Estimates)),
		Total:      p.Total,
		Page:       p.Page,
		TotalPages: p.TotalPages,
	}

	for i, e := range p.Estimates {
		resp.Estimates[i] = toResponse(e, now)
	}

	return resp
}
