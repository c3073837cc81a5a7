// Package invoice implements billing documents and the payments recorded
// against them. The status of an invoice is derived from what has been paid
// and when it is due; only cancellation is set directly.
package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

var ErrNotFound = errors.New("invoice not found")

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSent        Status = "sent"
	StatusViewed      Status = "viewed"
	StatusPartialPaid Status = "partial_paid"
	StatusPaid        Status = "paid"
	StatusOverdue     Status = "overdue"
	StatusCancelled   Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusPartialPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}

	return false
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodCard         PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodUPI, MethodBankTransfer, MethodCheque, MethodCard:
		return true
	}

	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}

	return false
}

type Payment struct {
	ID            uuid.UUID
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	PaymentDate   time.Time
	Status        PaymentStatus
	Notes         string
}

func (p *Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return apperr.Invalid("amount", p.Amount.String(), "must be greater than zero")
	}

	if !p.Method.Valid() {
		return apperr.Invalid("method", string(p.Method), "unknown payment method")
	}

	if !p.Status.Valid() {
		return apperr.Invalid("status", string(p.Status), "unknown payment status")
	}

	return nil
}

type Invoice struct {
	ID         uuid.UUID
	Number     string
	EstimateID *uuid.UUID
	TraderID   uuid.UUID
	CustomerID uuid.UUID
	Customer   document.CustomerInfo

	Items   []document.LineItem
	Charges document.Charges
	Totals  document.Totals

	PaidAmount    decimal.Decimal
	BalanceAmount decimal.Decimal

	Status   Status
	DueDate  time.Time
	Payments []Payment
	Notes    string
	Terms    string

	SentAt      *time.Time
	ViewedAt    *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recompute refreshes the document totals, the paid and balance amounts and
// the derived status, in that order.
func (inv *Invoice) Recompute(now time.Time) error {
	totals, err := document.Recompute(inv.Items, inv.Charges)
	if err != nil {
		return err
	}

	inv.Totals = totals

	paid := decimal.Zero
	for _, p := range inv.Payments {
		if p.Status == PaymentCompleted {
			paid = paid.Add(p.Amount)
		}
	}

	inv.PaidAmount = paid
	inv.BalanceAmount = totals.TotalAmount.Sub(paid)

	if inv.Status == StatusCancelled {
		return nil
	}

	switch {
	case paid.IsZero():
		if inv.Status == StatusPartialPaid || inv.Status == StatusPaid {
			inv.Status = StatusSent
		}
	case paid.GreaterThanOrEqual(totals.TotalAmount):
		inv.Status = StatusPaid
	default:
		inv.Status = StatusPartialPaid
	}

	if inv.IsOverdue(now) {
		inv.Status = StatusOverdue
	}

	if inv.Status == StatusPaid && inv.PaidAt == nil {
		inv.PaidAt = &now
	}

	return nil
}

// IsOverdue reports an outstanding balance past the due date.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.BalanceAmount.IsPositive() && now.After(inv.DueDate) && inv.Status != StatusPaid
}

// EnsureEditable guards update.
func (inv *Invoice) EnsureEditable() error {
	if inv.Status == StatusPaid || inv.Status == StatusCancelled {
		return inv.stateError("update", "paid and cancelled invoices are immutable",
			StatusDraft, StatusSent, StatusViewed, StatusPartialPaid, StatusOverdue)
	}

	return nil
}

// EnsureDeletable refuses to drop an invoice that has money against it.
func (inv *Invoice) EnsureDeletable() error {
	if inv.PaidAmount.IsPositive() {
		return inv.stateError("delete", "payments have been recorded")
	}

	return nil
}

// AddPayment appends p and recomputes. PaymentDate defaults to now and
// Status to completed.
func (inv *Invoice) AddPayment(p Payment, now time.Time) error {
	if inv.Status == StatusCancelled {
		return inv.stateError("add payment to", "invoice is cancelled")
	}

	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}

	if p.Status == "" {
		p.Status = PaymentCompleted
	}

	if err := p.Validate(); err != nil {
		return err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	inv.Payments = append(inv.Payments, p)
	inv.UpdatedAt = now

	return inv.Recompute(now)
}

func (inv *Invoice) Send(now time.Time) error {
	if inv.Status != StatusDraft {
		return inv.stateError("send", "only drafts can be sent", StatusDraft)
	}

	inv.Status = StatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now

	return inv.Recompute(now)
}

// MarkViewed stamps the first customer view. The status is left untouched.
func (inv *Invoice) MarkViewed(now time.Time) bool {
	if inv.ViewedAt != nil {
		return false
	}

	inv.ViewedAt = &now
	inv.UpdatedAt = now

	return true
}

func (inv *Invoice) Cancel(now time.Time) error {
	if inv.Status == StatusCancelled {
		return inv.stateError("cancel", "already cancelled")
	}

	if inv.PaidAmount.IsPositive() {
		return inv.stateError("cancel", "payments have been recorded")
	}

	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now

	return nil
}

func (inv *Invoice) ref() string {
	if inv.Number != "" {
		return inv.Number
	}

	return inv.ID.String()
}

func (inv *Invoice) stateError(op, reason string, allowed ...Status) error {
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}

	return &apperr.InvalidStateError{
		Entity:  "invoice",
		ID:      inv.ref(),
		Op:      op,
		Status:  string(inv.Status),
		Allowed: names,
		Reason:  reason,
	}
}
