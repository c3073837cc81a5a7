// Package conversion raises an invoice from an accepted estimate. The
// invoice insert and the estimate update commit together, and the estimate
// row is only flipped while it is still accepted and unconverted.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/event"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/lock"
	"github.com/MrJamesThe3rd/buildestimate/internal/sequence"
)

const lockTTL = 10 * time.Second

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=conversion
type Repository interface {
	BeginConversion(ctx context.Context) (Tx, error)
}

type Tx interface {
	LockEstimate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error)
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	MarkEstimateConverted(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error
	Commit() error
	Rollback() error
}

type Numberer interface {
	Next(ctx context.Context, kind sequence.Kind) (string, error)
}

type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (lock.Lock, error)
}

type Service struct {
	repo    Repository
	numbers Numberer
	locker  Locker
	events  event.Publisher
	dueIn   time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, numbers Numberer, locker Locker, events event.Publisher, dueIn time.Duration, log zerolog.Logger) *Service {
	if dueIn <= 0 {
		dueIn = 30 * 24 * time.Hour
	}

	return &Service{
		repo:    repo,
		numbers: numbers,
		locker:  locker,
		events:  events,
		dueIn:   dueIn,
		log:     log,
		now:     time.Now,
	}
}

// Params override the invoice defaults. Nil notes and terms fall back to
// the estimate's.
type Params struct {
	DueDate *time.Time
	Notes   *string
	Terms   *string
}

type Result struct {
	Invoice  *invoice.Invoice
	Estimate *estimate.Estimate
}

func (s *Service) Convert(ctx context.Context, a auth.Actor, estimateID uuid.UUID, p Params) (*Result, error) {
	if !a.IsTrader() {
		return nil, apperr.Forbidden("convert estimate", "only traders can raise invoices")
	}

	l, err := s.locker.Obtain(ctx, "conversion:"+estimateID.String(), lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return nil, &apperr.InvalidStateError{
				Entity: "estimate",
				ID:     estimateID.String(),
				Op:     "convert",
				Reason: "a conversion is already in progress",
			}
		}

		return nil, err
	}

	defer func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("estimate_id", estimateID.String()).Msg("releasing conversion lock")
		}
	}()

	tx, err := s.repo.BeginConversion(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin conversion: %w", err)
	}
	defer tx.Rollback()

	e, err := tx.LockEstimate(ctx, estimateID)
	if err != nil {
		if errors.Is(err, estimate.ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: "estimate", ID: estimateID.String()}
		}

		return nil, err
	}

	if !a.Sees(e.TraderID, e.CustomerID) {
		return nil, &apperr.NotFoundError{Entity: "estimate", ID: estimateID.String()}
	}

	if a.ID != e.TraderID {
		return nil, apperr.Forbidden("convert estimate", "only the owning trader")
	}

	if err := e.EnsureConvertible(); err != nil {
		return nil, err
	}

	now := s.now()

	inv, err := s.build(e, p, now)
	if err != nil {
		return nil, err
	}

	if inv.Number, err = s.numbers.Next(ctx, sequence.KindInvoice); err != nil {
		return nil, err
	}

	if err := tx.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	if err := tx.MarkEstimateConverted(ctx, e.ID, inv.ID, now); err != nil {
		if errors.Is(err, estimate.ErrStale) {
			return nil, &apperr.InvalidStateError{
				Entity:  "estimate",
				ID:      e.Number,
				Op:      "convert",
				Status:  string(e.Status),
				Allowed: []string{string(estimate.StatusAccepted)},
				Reason:  "already converted to an invoice",
			}
		}

		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing conversion: %w", err)
	}

	if err := e.MarkConverted(inv.ID, now); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, event.Event{
		Type:      event.EstimateConverted,
		EntityID:  e.ID,
		Number:    e.Number,
		ActorID:   a.ID,
		Timestamp: now,
	})

	return &Result{Invoice: inv, Estimate: e}, nil
}

// build copies the estimate snapshot into a new draft invoice.
func (s *Service) build(e *estimate.Estimate, p Params, now time.Time) (*invoice.Invoice, error) {
	estimateID := e.ID

	inv := &invoice.Invoice{
		EstimateID: &estimateID,
		TraderID:   e.TraderID,
		CustomerID: e.CustomerID,
		Customer:   e.Customer,
		Items:      document.CloneItems(e.Items),
		Charges:    e.Charges,
		Totals:     e.Totals,
		Status:     invoice.StatusDraft,
		DueDate:    now.Add(s.dueIn),
		Notes:      e.Notes,
		Terms:      e.Terms,
	}

	if p.DueDate != nil && !p.DueDate.IsZero() {
		inv.DueDate = *p.DueDate
	}

	if p.Notes != nil {
		inv.Notes = strings.TrimSpace(*p.Notes)
	}

	if p.Terms != nil {
		inv.Terms = strings.TrimSpace(*p.Terms)
	}

	if err := inv.Recompute(now); err != nil {
		return nil, err
	}

	return inv, nil
}
