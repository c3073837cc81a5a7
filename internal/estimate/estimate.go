// Package estimate implements the trader quote lifecycle:
// draft, sent, viewed, then accepted, rejected or expired, and finally
// converted once an invoice has been raised from it.
package estimate

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

var (
	ErrNotFound = errors.New("estimate not found")
	// ErrStale is returned by conditional updates whose precondition no longer holds.
	ErrStale = errors.New("estimate changed concurrently")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusConverted Status = "converted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected, StatusExpired, StatusConverted:
		return true
	}

	return false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusExpired || s == StatusConverted
}

type Estimate struct {
	ID         uuid.UUID
	Number     string
	TraderID   uuid.UUID
	CustomerID uuid.UUID
	Customer   document.CustomerInfo

	Items   []document.LineItem
	Charges document.Charges
	Totals  document.Totals

	Status     Status
	ValidUntil time.Time
	Notes      string
	Terms      string

	SentAt          *time.Time
	ViewedAt        *time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason string

	ConvertedToInvoice bool
	InvoiceID          *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recompute overwrites every derived amount from the items and charges.
func (e *Estimate) Recompute() error {
	totals, err := document.Recompute(e.Items, e.Charges)
	if err != nil {
		return err
	}

	e.Totals = totals

	return nil
}

func (e *Estimate) IsExpired(now time.Time) bool {
	return now.After(e.ValidUntil)
}

// EnsureEditable guards update and delete.
func (e *Estimate) EnsureEditable(op string) error {
	if e.Status == StatusAccepted || e.Status == StatusConverted {
		return e.stateError(op, "accepted and converted estimates are immutable",
			StatusDraft, StatusSent, StatusViewed, StatusRejected, StatusExpired)
	}

	return nil
}

func (e *Estimate) Send(now time.Time) error {
	if e.Status != StatusDraft {
		return e.stateError("send", "only drafts can be sent", StatusDraft)
	}

	e.Status = StatusSent
	e.SentAt = &now
	e.UpdatedAt = now

	return nil
}

// MarkViewed records the first customer view. It reports whether anything changed.
func (e *Estimate) MarkViewed(now time.Time) bool {
	if e.ViewedAt != nil {
		return false
	}

	if e.Status != StatusSent && e.Status != StatusViewed {
		return false
	}

	e.ViewedAt = &now
	e.Status = StatusViewed
	e.UpdatedAt = now

	return true
}

func (e *Estimate) Accept(now time.Time) error {
	if e.Status != StatusSent && e.Status != StatusViewed {
		return e.stateError("accept", "", StatusSent, StatusViewed)
	}

	if e.IsExpired(now) {
		return e.stateError("accept", "valid until "+e.ValidUntil.Format(time.DateOnly)+" has passed",
			StatusSent, StatusViewed)
	}

	e.Status = StatusAccepted
	e.AcceptedAt = &now
	e.UpdatedAt = now

	return nil
}

func (e *Estimate) Reject(now time.Time, reason string) error {
	switch e.Status {
	case StatusDraft, StatusSent, StatusViewed:
	default:
		return e.stateError("reject", "", StatusDraft, StatusSent, StatusViewed)
	}

	e.Status = StatusRejected
	e.RejectedAt = &now
	e.RejectionReason = reason
	e.UpdatedAt = now

	return nil
}

// Expire moves a sent estimate past its validity to expired. It reports
// whether the status changed; estimates in any other state are left alone.
func (e *Estimate) Expire(now time.Time) bool {
	if e.Status != StatusSent || !e.IsExpired(now) {
		return false
	}

	e.Status = StatusExpired
	e.UpdatedAt = now

	return true
}

// EnsureConvertible checks that an invoice may be raised from the estimate.
func (e *Estimate) EnsureConvertible() error {
	if e.ConvertedToInvoice {
		return e.stateError("convert", "already converted to an invoice", StatusAccepted)
	}

	if e.Status != StatusAccepted {
		return e.stateError("convert", "", StatusAccepted)
	}

	return nil
}

func (e *Estimate) MarkConverted(invoiceID uuid.UUID, now time.Time) error {
	if err := e.EnsureConvertible(); err != nil {
		return err
	}

	e.Status = StatusConverted
	e.ConvertedToInvoice = true
	e.InvoiceID = &invoiceID
	e.UpdatedAt = now

	return nil
}

func (e *Estimate) ref() string {
	if e.Number != "" {
		return e.Number
	}

	return e.ID.String()
}

func (e *Estimate) stateError(op, reason string, allowed ...Status) error {
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}

	return &apperr.InvalidStateError{
		Entity:  "estimate",
		ID:      e.ref(),
		Op:      op,
		Status:  string(e.Status),
		Allowed: names,
		Reason:  reason,
	}
}
