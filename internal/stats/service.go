// Package stats aggregates the landing-page figures and the per-role
// dashboard.
package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

const (
	publicKey = "stats:public"
	publicTTL = time.Minute
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=stats
type Repository interface {
	PublicStats(ctx context.Context) (*Public, error)
	UserCounts(ctx context.Context) ([]UserCount, error)
	EstimateCounts(ctx context.Context, traderID *uuid.UUID) ([]EstimateCount, error)
	InvoiceBuckets(ctx context.Context, traderID *uuid.UUID) ([]InvoiceBucket, error)
}

type Cache interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Store(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Public struct {
	ActiveTraders    int             `json:"activeTraders"`
	EstimatesCreated int             `json:"estimatesCreated"`
	PaidInvoiceValue decimal.Decimal `json:"paidInvoiceValue"`
	TotalUsers       int             `json:"totalUsers"`
}

type UserCount struct {
	Role   auth.Role
	Status user.Status
	Count  int
}

type EstimateCount struct {
	Status estimate.Status
	Count  int
}

// InvoiceBucket sums the invoices sharing a status.
type InvoiceBucket struct {
	Status  invoice.Status
	Count   int
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

type Dashboard struct {
	Users     []UserCount
	Estimates map[estimate.Status]int
	Invoices  map[invoice.Status]int
	Revenue   decimal.Decimal
	Pending   decimal.Decimal
}

type Service struct {
	repo  Repository
	cache Cache
	log   zerolog.Logger
}

// NewService builds the service. A nil cache disables caching.
func NewService(repo Repository, cache Cache, log zerolog.Logger) *Service {
	if cache == nil {
		cache = noCache{}
	}

	return &Service{repo: repo, cache: cache, log: log}
}

// Public returns the anonymous landing-page figures, cached briefly.
func (s *Service) Public(ctx context.Context) (*Public, error) {
	var cached Public

	ok, err := s.cache.Load(ctx, publicKey, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading cached public stats")
	}

	if ok {
		return &cached, nil
	}

	p, err := s.repo.PublicStats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Store(ctx, publicKey, p, publicTTL); err != nil {
		s.log.Warn().Err(err).Msg("caching public stats")
	}

	return p, nil
}

// Dashboard returns platform-wide figures for admins and the trader's own
// figures for traders.
func (s *Service) Dashboard(ctx context.Context, a auth.Actor) (*Dashboard, error) {
	var traderID *uuid.UUID

	switch a.Role {
	case auth.RoleAdmin:
	case auth.RoleTrader:
		traderID = &a.ID
	default:
		return nil, apperr.Forbidden("view dashboard", "admins and traders only")
	}

	d := &Dashboard{
		Estimates: make(map[estimate.Status]int),
		Invoices:  make(map[invoice.Status]int),
	}

	if a.IsAdmin() {
		users, err := s.repo.UserCounts(ctx)
		if err != nil {
			return nil, err
		}

		d.Users = users
	}

	estimates, err := s.repo.EstimateCounts(ctx, traderID)
	if err != nil {
		return nil, err
	}

	for _, c := range estimates {
		d.Estimates[c.Status] += c.Count
	}

	buckets, err := s.repo.InvoiceBuckets(ctx, traderID)
	if err != nil {
		return nil, err
	}

	for _, b := range buckets {
		d.Invoices[b.Status] += b.Count

		if b.Status == invoice.StatusCancelled {
			continue
		}

		d.Revenue = d.Revenue.Add(b.Paid)

		if b.Status != invoice.StatusDraft && b.Balance.IsPositive() {
			d.Pending = d.Pending.Add(b.Balance)
		}
	}

	return d, nil
}

type noCache struct{}

func (noCache) Load(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) Store(context.Context, string, any, time.Duration) error { return nil }
