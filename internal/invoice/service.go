package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/event"
	"github.com/MrJamesThe3rd/buildestimate/internal/sequence"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	CountInvoices(ctx context.Context, filter ListFilter) (int, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*Invoice, error)
}

type Numberer interface {
	Next(ctx context.Context, kind sequence.Kind) (string, error)
}

type CustomerDirectory interface {
	CustomerInfo(ctx context.Context, id uuid.UUID) (document.CustomerInfo, error)
}

// Config holds the invoice defaults and the UPI payee.
type Config struct {
	DefaultDueIn time.Duration
	UPIID        string
	MerchantName string
}

type Service struct {
	repo      Repository
	numbers   Numberer
	customers CustomerDirectory
	events    event.Publisher
	cfg       Config
	now       func() time.Time
}

func NewService(repo Repository, numbers Numberer, customers CustomerDirectory, events event.Publisher, cfg Config) *Service {
	if cfg.DefaultDueIn <= 0 {
		cfg.DefaultDueIn = 30 * 24 * time.Hour
	}

	return &Service{
		repo:      repo,
		numbers:   numbers,
		customers: customers,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

type CreateParams struct {
	CustomerID uuid.UUID
	Items      []document.LineItem
	Charges    document.Charges
	DueDate    *time.Time
	Notes      string
	Terms      string
}

type UpdateParams struct {
	Items   []document.LineItem
	Charges *document.Charges
	DueDate *time.Time
	Notes   *string
	Terms   *string
}

type PaymentParams struct {
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	PaymentDate   *time.Time
	Status        PaymentStatus
	Notes         string
}

type ListFilter struct {
	TraderID   *uuid.UUID
	CustomerID *uuid.UUID
	Status     *Status
	Search     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type ListParams struct {
	Status     *Status
	Search     string
	TraderID   *uuid.UUID
	CustomerID *uuid.UUID
	Page       int
	Limit      int
}

type Page struct {
	Invoices   []*Invoice
	Total      int
	Page       int
	TotalPages int
}

// DueDate returns the default due date for an invoice raised at now.
func (s *Service) DueDate(now time.Time) time.Time {
	return now.Add(s.cfg.DefaultDueIn)
}

// Create raises a standalone invoice, not backed by an estimate.
func (s *Service) Create(ctx context.Context, a auth.Actor, p CreateParams) (*Invoice, error) {
	if !a.IsTrader() {
		return nil, apperr.Forbidden("create invoice", "only traders can create invoices")
	}

	now := s.now()

	inv := &Invoice{
		TraderID:   a.ID,
		CustomerID: p.CustomerID,
		Items:      document.CloneItems(p.Items),
		Charges:    p.Charges,
		Status:     StatusDraft,
		DueDate:    s.DueDate(now),
		Notes:      strings.TrimSpace(p.Notes),
		Terms:      strings.TrimSpace(p.Terms),
	}

	if p.DueDate != nil && !p.DueDate.IsZero() {
		inv.DueDate = *p.DueDate
	}

	if err := inv.Recompute(now); err != nil {
		return nil, err
	}

	info, err := s.customers.CustomerInfo(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	inv.Customer = info

	number, err := s.numbers.Next(ctx, sequence.KindInvoice)
	if err != nil {
		return nil, err
	}

	inv.Number = number

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) Update(ctx context.Context, a auth.Actor, id uuid.UUID, p UpdateParams) (*Invoice, error) {
	inv, err := s.loadOwned(ctx, a, id, "update invoice")
	if err != nil {
		return nil, err
	}

	if err := inv.EnsureEditable(); err != nil {
		return nil, err
	}

	if p.Items != nil {
		inv.Items = document.CloneItems(p.Items)
	}

	if p.Charges != nil {
		inv.Charges = *p.Charges
	}

	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			return nil, apperr.Invalid("dueDate", "", "is required")
		}

		inv.DueDate = *p.DueDate
	}

	if p.Notes != nil {
		inv.Notes = strings.TrimSpace(*p.Notes)
	}

	if p.Terms != nil {
		inv.Terms = strings.TrimSpace(*p.Terms)
	}

	now := s.now()
	if err := inv.Recompute(now); err != nil {
		return nil, err
	}

	inv.UpdatedAt = now

	if err := s.update(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, a auth.Actor, id uuid.UUID) error {
	inv, err := s.loadOwned(ctx, a, id, "delete invoice")
	if err != nil {
		return err
	}

	if err := inv.EnsureDeletable(); err != nil {
		return err
	}

	return s.remove(ctx, id)
}

// Get returns the invoice. The first read by its customer stamps ViewedAt.
func (s *Service) Get(ctx context.Context, a auth.Actor, id uuid.UUID) (*Invoice, error) {
	inv, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if a.IsCustomer() && a.ID == inv.CustomerID && inv.MarkViewed(s.now()) {
		if err := s.update(ctx, inv); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

func (s *Service) List(ctx context.Context, a auth.Actor, p ListParams) (*Page, error) {
	filter := ListFilter{Status: p.Status, Search: strings.TrimSpace(p.Search)}

	switch a.Role {
	case auth.RoleCustomer:
		filter.CustomerID = &a.ID
		filter.TraderID = p.TraderID
	case auth.RoleTrader:
		filter.TraderID = &a.ID
		filter.CustomerID = p.CustomerID
	case auth.RoleAdmin:
		filter.TraderID = p.TraderID
		filter.CustomerID = p.CustomerID
	default:
		return nil, apperr.Forbidden("list invoices", "unknown role")
	}

	page := max(p.Page, 1)

	limit := p.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	limit = min(limit, MaxPageSize)

	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	invoices, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Invoices:   invoices,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Scoped lists every invoice visible to the actor matching filter, without
// pagination. Role scoping overrides the filter's trader and customer.
func (s *Service) Scoped(ctx context.Context, a auth.Actor, filter ListFilter) ([]*Invoice, error) {
	switch a.Role {
	case auth.RoleCustomer:
		filter.CustomerID = &a.ID
	case auth.RoleTrader:
		filter.TraderID = &a.ID
	case auth.RoleAdmin:
	default:
		return nil, apperr.Forbidden("list invoices", "unknown role")
	}

	filter.Limit, filter.Offset = 0, 0

	return s.repo.ListInvoices(ctx, filter)
}

func (s *Service) Send(ctx context.Context, a auth.Actor, id uuid.UUID) (*Invoice, error) {
	inv, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if !a.IsTrader() || a.ID != inv.TraderID {
		return nil, apperr.Forbidden("send invoice", "only the owning trader can send it")
	}

	now := s.now()
	if err := inv.Send(now); err != nil {
		return nil, err
	}

	if err := s.update(ctx, inv); err != nil {
		return nil, err
	}

	s.publish(ctx, inv, a, event.InvoiceSent, now)

	return inv, nil
}

// AddPayment records a payment. Reaching paid raises invoice.paid.
func (s *Service) AddPayment(ctx context.Context, a auth.Actor, id uuid.UUID, p PaymentParams) (*Invoice, error) {
	inv, err := s.loadOwned(ctx, a, id, "add payment")
	if err != nil {
		return nil, err
	}

	now := s.now()
	wasPaid := inv.Status == StatusPaid

	payment := Payment{
		Amount:        p.Amount,
		Method:        p.Method,
		TransactionID: strings.TrimSpace(p.TransactionID),
		Status:        p.Status,
		Notes:         strings.TrimSpace(p.Notes),
	}

	if p.PaymentDate != nil {
		payment.PaymentDate = *p.PaymentDate
	}

	if err := inv.AddPayment(payment, now); err != nil {
		return nil, err
	}

	if err := s.update(ctx, inv); err != nil {
		return nil, err
	}

	if !wasPaid && inv.Status == StatusPaid {
		s.publish(ctx, inv, a, event.InvoicePaid, now)
	}

	return inv, nil
}

func (s *Service) Cancel(ctx context.Context, a auth.Actor, id uuid.UUID) (*Invoice, error) {
	inv, err := s.loadOwned(ctx, a, id, "cancel invoice")
	if err != nil {
		return nil, err
	}

	if err := inv.Cancel(s.now()); err != nil {
		return nil, err
	}

	if err := s.update(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// PaymentLink returns a UPI deep link for the outstanding balance.
func (s *Service) PaymentLink(ctx context.Context, a auth.Actor, id uuid.UUID) (string, error) {
	if s.cfg.UPIID == "" {
		return "", apperr.Invalid("upiId", "", "no UPI payee configured")
	}

	inv, err := s.load(ctx, a, id)
	if err != nil {
		return "", err
	}

	if inv.Status == StatusCancelled {
		return "", inv.stateError("request payment for", "invoice is cancelled")
	}

	if !inv.BalanceAmount.IsPositive() {
		return "", inv.stateError("request payment for", "nothing is outstanding")
	}

	return UPILink(s.cfg.UPIID, s.cfg.MerchantName, inv.Number, inv.BalanceAmount), nil
}

// UPILink builds a upi://pay URL. Amounts use two decimal places.
func UPILink(upiID, merchant, number string, amount decimal.Decimal) string {
	return "upi://pay?pa=" + upiID +
		"&pn=" + uriComponent(merchant) +
		"&am=" + document.Format(amount) +
		"&cu=INR" +
		"&tn=" + uriComponent("Payment for Invoice "+number) +
		"&tr=" + number
}

func uriComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// MarkOverdue recomputes every unpaid invoice past its due date and
// persists those whose status changed. It returns how many changed.
func (s *Service) MarkOverdue(ctx context.Context) (int, error) {
	now := s.now()

	candidates, err := s.repo.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing overdue invoices: %w", err)
	}

	changed := 0

	for _, inv := range candidates {
		before := inv.Status

		if err := inv.Recompute(now); err != nil {
			return changed, fmt.Errorf("recomputing invoice %s: %w", inv.Number, err)
		}

		if inv.Status == before {
			continue
		}

		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return changed, fmt.Errorf("updating invoice %s: %w", inv.Number, err)
		}

		changed++
	}

	return changed, nil
}

func (s *Service) publish(ctx context.Context, inv *Invoice, a auth.Actor, t event.Type, now time.Time) {
	s.events.Publish(ctx, event.Event{
		Type:      t,
		EntityID:  inv.ID,
		Number:    inv.Number,
		ActorID:   a.ID,
		Timestamp: now,
	})
}

// update and remove report a row that vanished since it was loaded the same
// way load does.
func (s *Service) update(ctx context.Context, inv *Invoice) error {
	return mapNotFound(s.repo.UpdateInvoice(ctx, inv), inv.ID)
}

func (s *Service) remove(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.repo.DeleteInvoice(ctx, id), id)
}

func mapNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, ErrNotFound) {
		return &apperr.NotFoundError{Entity: "invoice", ID: id.String()}
	}

	return err
}

func (s *Service) load(ctx context.Context, a auth.Actor, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: "invoice", ID: id.String()}
		}

		return nil, err
	}

	if !a.Sees(inv.TraderID, inv.CustomerID) {
		return nil, &apperr.NotFoundError{Entity: "invoice", ID: id.String()}
	}

	return inv, nil
}

func (s *Service) loadOwned(ctx context.Context, a auth.Actor, id uuid.UUID, op string) (*Invoice, error) {
	inv, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if !a.IsAdmin() && a.ID != inv.TraderID {
		return nil, apperr.Forbidden(op, "only the owning trader or an admin")
	}

	return inv, nil
}
