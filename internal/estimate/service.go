package estimate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

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

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=estimate
type Repository interface {
	CreateEstimate(ctx context.Context, e *Estimate) error
	GetEstimate(ctx context.Context, id uuid.UUID) (*Estimate, error)
	UpdateEstimate(ctx context.Context, e *Estimate) error
	DeleteEstimate(ctx context.Context, id uuid.UUID) error

	ListEstimates(ctx context.Context, filter ListFilter) ([]*Estimate, error)
	CountEstimates(ctx context.Context, filter ListFilter) (int, error)
	ListExpirable(ctx context.Context, now time.Time) ([]*Estimate, error)
}

type Numberer interface {
	Next(ctx context.Context, kind sequence.Kind) (string, error)
}

type CustomerDirectory interface {
	CustomerInfo(ctx context.Context, id uuid.UUID) (document.CustomerInfo, error)
}

type Service struct {
	repo      Repository
	numbers   Numberer
	customers CustomerDirectory
	events    event.Publisher
	now       func() time.Time
}

func NewService(repo Repository, numbers Numberer, customers CustomerDirectory, events event.Publisher) *Service {
	return &Service{
		repo:      repo,
		numbers:   numbers,
		customers: customers,
		events:    events,
		now:       time.Now,
	}
}

type CreateParams struct {
	CustomerID uuid.UUID
	Items      []document.LineItem
	Charges    document.Charges
	ValidUntil time.Time
	Notes      string
	Terms      string
}

// UpdateParams carries the fields to change. Nil fields are left as they are.
type UpdateParams struct {
	Items      []document.LineItem
	Charges    *document.Charges
	ValidUntil *time.Time
	Notes      *string
	Terms      *string
}

// ListFilter is the store-level query. Limit 0 means no limit.
type ListFilter struct {
	TraderID   *uuid.UUID
	CustomerID *uuid.UUID
	Status     *Status
	Search     string
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
	Estimates  []*Estimate
	Total      int
	Page       int
	TotalPages int
}

func (s *Service) Create(ctx context.Context, a auth.Actor, p CreateParams) (*Estimate, error) {
	if !a.IsTrader() {
		return nil, apperr.Forbidden("create estimate", "only traders can create estimates")
	}

	if p.ValidUntil.IsZero() {
		return nil, apperr.Invalid("validUntil", "", "is required")
	}

	e := &Estimate{
		TraderID:   a.ID,
		CustomerID: p.CustomerID,
		Items:      document.CloneItems(p.Items),
		Charges:    p.Charges,
		Status:     StatusDraft,
		ValidUntil: p.ValidUntil,
		Notes:      strings.TrimSpace(p.Notes),
		Terms:      strings.TrimSpace(p.Terms),
	}

	if err := e.Recompute(); err != nil {
		return nil, err
	}

	info, err := s.customers.CustomerInfo(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	e.Customer = info

	number, err := s.numbers.Next(ctx, sequence.KindEstimate)
	if err != nil {
		return nil, err
	}

	e.Number = number

	if err := s.repo.CreateEstimate(ctx, e); err != nil {
		return nil, fmt.Errorf("creating estimate: %w", err)
	}

	return e, nil
}

func (s *Service) Update(ctx context.Context, a auth.Actor, id uuid.UUID, p UpdateParams) (*Estimate, error) {
	e, err := s.loadOwned(ctx, a, id, "update estimate")
	if err != nil {
		return nil, err
	}

	if err := e.EnsureEditable("update"); err != nil {
		return nil, err
	}

	if p.Items != nil {
		e.Items = document.CloneItems(p.Items)
	}

	if p.Charges != nil {
		e.Charges = *p.Charges
	}

	if p.ValidUntil != nil {
		if p.ValidUntil.IsZero() {
			return nil, apperr.Invalid("validUntil", "", "is required")
		}

		e.ValidUntil = *p.ValidUntil
	}

	if p.Notes != nil {
		e.Notes = strings.TrimSpace(*p.Notes)
	}

	if p.Terms != nil {
		e.Terms = strings.TrimSpace(*p.Terms)
	}

	if err := e.Recompute(); err != nil {
		return nil, err
	}

	e.UpdatedAt = s.now()

	if err := s.update(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Delete(ctx context.Context, a auth.Actor, id uuid.UUID) error {
	e, err := s.loadOwned(ctx, a, id, "delete estimate")
	if err != nil {
		return err
	}

	if err := e.EnsureEditable("delete"); err != nil {
		return err
	}

	return s.remove(ctx, id)
}

// Get returns the estimate. The first read by its customer marks it viewed.
func (s *Service) Get(ctx context.Context, a auth.Actor, id uuid.UUID) (*Estimate, error) {
	e, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if a.IsCustomer() && a.ID == e.CustomerID && e.MarkViewed(s.now()) {
		if err := s.update(ctx, e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// List returns a page of estimates visible to the actor, newest first.
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
		return nil, apperr.Forbidden("list estimates", "unknown role")
	}

	page, limit := paginate(p.Page, p.Limit)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	estimates, err := s.repo.ListEstimates(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountEstimates(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Estimates:  estimates,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit
}

func (s *Service) Send(ctx context.Context, a auth.Actor, id uuid.UUID) (*Estimate, error) {
	e, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if !a.IsTrader() || a.ID != e.TraderID {
		return nil, apperr.Forbidden("send estimate", "only the owning trader can send it")
	}

	now := s.now()
	if err := e.Send(now); err != nil {
		return nil, err
	}

	return e, s.persist(ctx, e, a, event.EstimateSent, now)
}

func (s *Service) Accept(ctx context.Context, a auth.Actor, id uuid.UUID) (*Estimate, error) {
	e, err := s.loadAsCustomer(ctx, a, id, "accept estimate")
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := e.Accept(now); err != nil {
		return nil, err
	}

	return e, s.persist(ctx, e, a, event.EstimateAccepted, now)
}

func (s *Service) Reject(ctx context.Context, a auth.Actor, id uuid.UUID, reason string) (*Estimate, error) {
	e, err := s.loadAsCustomer(ctx, a, id, "reject estimate")
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := e.Reject(now, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}

	return e, s.persist(ctx, e, a, event.EstimateRejected, now)
}

// CheckExpiry expires the estimate when it is sent and past its validity.
func (s *Service) CheckExpiry(ctx context.Context, a auth.Actor, id uuid.UUID) (*Estimate, error) {
	e, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if e.Expire(s.now()) {
		if err := s.update(ctx, e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ExpireOverdue sweeps every sent estimate past its validity and returns how
// many were expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.now()

	candidates, err := s.repo.ListExpirable(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing expirable estimates: %w", err)
	}

	expired := 0

	for _, e := range candidates {
		if !e.Expire(now) {
			continue
		}

		if err := s.repo.UpdateEstimate(ctx, e); err != nil {
			return expired, fmt.Errorf("expiring estimate %s: %w", e.Number, err)
		}

		expired++
	}

	return expired, nil
}

func (s *Service) persist(ctx context.Context, e *Estimate, a auth.Actor, t event.Type, now time.Time) error {
	if err := s.update(ctx, e); err != nil {
		return err
	}

	s.events.Publish(ctx, event.Event{
		Type:      t,
		EntityID:  e.ID,
		Number:    e.Number,
		ActorID:   a.ID,
		Timestamp: now,
	})

	return nil
}

// load fetches an estimate the actor may see. Invisible estimates are
// reported as not found.
// update and remove report a row that vanished since it was loaded the same
// way load does.
func (s *Service) update(ctx context.Context, e *Estimate) error {
	return mapNotFound(s.repo.UpdateEstimate(ctx, e), e.ID)
}

func (s *Service) remove(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.repo.DeleteEstimate(ctx, id), id)
}

func mapNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, ErrNotFound) {
		return &apperr.NotFoundError{Entity: "estimate", ID: id.String()}
	}

	return err
}

func (s *Service) load(ctx context.Context, a auth.Actor, id uuid.UUID) (*Estimate, error) {
	e, err := s.repo.GetEstimate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: "estimate", ID: id.String()}
		}

		return nil, err
	}

	if !a.Sees(e.TraderID, e.CustomerID) {
		return nil, &apperr.NotFoundError{Entity: "estimate", ID: id.String()}
	}

	return e, nil
}

func (s *Service) loadOwned(ctx context.Context, a auth.Actor, id uuid.UUID, op string) (*Estimate, error) {
	e, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if !a.IsAdmin() && a.ID != e.TraderID {
		return nil, apperr.Forbidden(op, "only the owning trader or an admin")
	}

	return e, nil
}

func (s *Service) loadAsCustomer(ctx context.Context, a auth.Actor, id uuid.UUID, op string) (*Estimate, error) {
	e, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if !a.IsCustomer() || a.ID != e.CustomerID {
		return nil, apperr.Forbidden(op, "only the addressed customer")
	}

	return e, nil
}
