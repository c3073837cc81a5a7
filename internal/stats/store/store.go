package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/stats"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) PublicStats(ctx context.Context) (*stats.Public, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'trader' AND status = 'active' AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM estimates),
			(SELECT COALESCE(SUM(total_amount), 0) FROM invoices WHERE status = 'paid'),
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL)
	`

	var p stats.Public

	err := s.db.QueryRowContext(ctx, query).Scan(&p.ActiveTraders, &p.EstimatesCreated, &p.PaidInvoiceValue, &p.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("querying public stats: %w", err)
	}

	return &p, nil
}

func (s *Store) UserCounts(ctx context.Context) ([]stats.UserCount, error) {
	query := `
		SELECT role, status, COUNT(*)
		FROM users
		WHERE deleted_at IS NULL
		GROUP BY role, status
		ORDER BY role, status
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	defer rows.Close()

	var out []stats.UserCount

	for rows.Next() {
		var (
			c            stats.UserCount
			role, status string
		)

		if err := rows.Scan(&role, &status, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning user count: %w", err)
		}

		c.Role, c.Status = auth.Role(role), user.Status(status)
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user counts: %w", err)
	}

	return out, nil
}

func (s *Store) EstimateCounts(ctx context.Context, traderID *uuid.UUID) ([]stats.EstimateCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM estimates
		WHERE ($1::uuid IS NULL OR trader_id = $1)
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, traderID)
	if err != nil {
		return nil, fmt.Errorf("counting estimates: %w", err)
	}
	defer rows.Close()

	var out []stats.EstimateCount

	for rows.Next() {
		var (
			c      stats.EstimateCount
			status string
		)

		if err := rows.Scan(&status, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning estimate count: %w", err)
		}

		c.Status = estimate.Status(status)
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estimate counts: %w", err)
	}

	return out, nil
}

func (s *Store) InvoiceBuckets(ctx context.Context, traderID *uuid.UUID) ([]stats.InvoiceBucket, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0), COALESCE(SUM(balance_amount), 0)
		FROM invoices
		WHERE ($1::uuid IS NULL OR trader_id = $1)
		GROUP BY status
	`

	rows, err := s.db.QueryContext(ctx, query, traderID)
	if err != nil {
		return nil, fmt.Errorf("summing invoices: %w", err)
	}
	defer rows.Close()

	var out []stats.InvoiceBucket

	for rows.Next() {
		var (
			b      stats.InvoiceBucket
			status string
		)

		if err := rows.Scan(&status, &b.Count, &b.Total, &b.Paid, &b.Balance); err != nil {
			return nil, fmt.Errorf("scanning invoice bucket: %w", err)
		}

		b.Status = invoice.Status(status)
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice buckets: %w", err)
	}

	return out, nil
}
