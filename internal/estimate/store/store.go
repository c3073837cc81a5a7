package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db querier
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// NewTx binds the store to an open transaction.
func NewTx(tx *sql.Tx) *Store {
	return &Store{db: tx}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectEstimateColumns = `
	id, number, trader_id, customer_id,
	customer_name, customer_phone, customer_email, customer_address,
	items, subtotal, discount_percent, discount_amount, loading_charges,
	taxable_amount, tax_percent, tax_amount, total_amount,
	status, valid_until, notes, terms,
	sent_at, viewed_at, accepted_at, rejected_at, rejection_reason,
	converted_to_invoice, invoice_id, created_at, updated_at
`

func scanEstimate(s scanner) (*estimate.Estimate, error) {
	var (
		e         estimate.Estimate
		items     []byte
		status    string
		rejection sql.NullString
	)

	if err := s.Scan(
		&e.ID, &e.Number, &e.TraderID, &e.CustomerID,
		&e.Customer.Name, &e.Customer.Phone, &e.Customer.Email, &e.Customer.Address,
		&items, &e.Totals.Subtotal, &e.Charges.DiscountPercent, &e.Totals.DiscountAmount, &e.Charges.LoadingCharges,
		&e.Totals.TaxableAmount, &e.Charges.TaxPercent, &e.Totals.TaxAmount, &e.Totals.TotalAmount,
		&status, &e.ValidUntil, &e.Notes, &e.Terms,
		&e.SentAt, &e.ViewedAt, &e.AcceptedAt, &e.RejectedAt, &rejection,
		&e.ConvertedToInvoice, &e.InvoiceID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := document.DecodeItems(items)
	if err != nil {
		return nil, err
	}

	e.Items = decoded
	e.Status = estimate.Status(status)
	e.RejectionReason = rejection.String

	return &e, nil
}

func (s *Store) CreateEstimate(ctx context.Context, e *estimate.Estimate) error {
	items, err := document.EncodeItems(e.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO estimates (
			number, trader_id, customer_id,
			customer_name, customer_phone, customer_email, customer_address,
			items, subtotal, discount_percent, discount_amount, loading_charges,
			taxable_amount, tax_percent, tax_amount, total_amount,
			status, valid_until, notes, terms, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		e.Number, e.TraderID, e.CustomerID,
		e.Customer.Name, e.Customer.Phone, e.Customer.Email, e.Customer.Address,
		items, e.Totals.Subtotal, e.Charges.DiscountPercent, e.Totals.DiscountAmount, e.Charges.LoadingCharges,
		e.Totals.TaxableAmount, e.Charges.TaxPercent, e.Totals.TaxAmount, e.Totals.TotalAmount,
		e.Status, e.ValidUntil, e.Notes, e.Terms,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting estimate: %w", err)
	}

	return nil
}

func (s *Store) GetEstimate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	return s.get(ctx, `SELECT `+selectEstimateColumns+` FROM estimates WHERE id = $1`, id)
}

// GetEstimateForUpdate reads the estimate and locks its row until the
// surrounding transaction ends.
func (s *Store) GetEstimateForUpdate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	return s.get(ctx, `SELECT `+selectEstimateColumns+` FROM estimates WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) get(ctx context.Context, query string, id uuid.UUID) (*estimate.Estimate, error) {
	e, err := scanEstimate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, estimate.ErrNotFound
		}

		return nil, fmt.Errorf("getting estimate: %w", err)
	}

	return e, nil
}

func (s *Store) UpdateEstimate(ctx context.Context, e *estimate.Estimate) error {
	items, err := document.EncodeItems(e.Items)
	if err != nil {
		return err
	}

	query := `
		UPDATE estimates
		SET items = $1, subtotal = $2, discount_percent = $3, discount_amount = $4, loading_charges = $5,
			taxable_amount = $6, tax_percent = $7, tax_amount = $8, total_amount = $9,
			status = $10, valid_until = $11, notes = $12, terms = $13,
			sent_at = $14, viewed_at = $15, accepted_at = $16, rejected_at = $17, rejection_reason = NULLIF($18, ''),
			converted_to_invoice = $19, invoice_id = $20, updated_at = NOW()
		WHERE id = $21
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		items, e.Totals.Subtotal, e.Charges.DiscountPercent, e.Totals.DiscountAmount, e.Charges.LoadingCharges,
		e.Totals.TaxableAmount, e.Charges.TaxPercent, e.Totals.TaxAmount, e.Totals.TotalAmount,
		e.Status, e.ValidUntil, e.Notes, e.Terms,
		e.SentAt, e.ViewedAt, e.AcceptedAt, e.RejectedAt, e.RejectionReason,
		e.ConvertedToInvoice, e.InvoiceID, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate.ErrNotFound
		}

		return fmt.Errorf("updating estimate: %w", err)
	}

	return nil
}

// MarkConverted links the estimate to its invoice, but only while it is
// still accepted and unconverted. Otherwise it returns estimate.ErrStale.
func (s *Store) MarkConverted(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error {
	query := `
		UPDATE estimates
		SET status = $1, converted_to_invoice = TRUE, invoice_id = $2, updated_at = $3
		WHERE id = $4 AND status = $5 AND NOT converted_to_invoice
	`

	res, err := s.db.ExecContext(ctx, query,
		estimate.StatusConverted, invoiceID, at, id, estimate.StatusAccepted,
	)
	if err != nil {
		return fmt.Errorf("marking estimate converted: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking estimate converted: %w", err)
	}

	if n == 0 {
		return estimate.ErrStale
	}

	return nil
}

func (s *Store) DeleteEstimate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting estimate: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return estimate.ErrNotFound
	}

	return nil
}

func whereClause(filter estimate.ListFilter) (string, []any) {
	where := ` WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.TraderID != nil {
		where += fmt.Sprintf(" AND trader_id = $%d", argIdx)

		args = append(args, *filter.TraderID)
		argIdx++
	}

	if filter.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(
			" AND (number ILIKE $%d OR customer_name ILIKE $%d OR customer_phone ILIKE $%d OR items::text ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		)

		args = append(args, database.Contains(filter.Search))
	}

	return where, args
}

func (s *Store) ListEstimates(ctx context.Context, filter estimate.ListFilter) ([]*estimate.Estimate, error) {
	where, args := whereClause(filter)

	query := `SELECT ` + selectEstimateColumns + ` FROM estimates` + where + ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	return s.list(ctx, query, args...)
}

func (s *Store) CountEstimates(ctx context.Context, filter estimate.ListFilter) (int, error) {
	where, args := whereClause(filter)

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM estimates`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting estimates: %w", err)
	}

	return n, nil
}

func (s *Store) ListExpirable(ctx context.Context, now time.Time) ([]*estimate.Estimate, error) {
	query := `SELECT ` + selectEstimateColumns + ` FROM estimates
		WHERE status = $1 AND valid_until < $2
		ORDER BY valid_until ASC`

	return s.list(ctx, query, estimate.StatusSent, now)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*estimate.Estimate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*estimate.Estimate

	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning estimate: %w", err)
		}

		estimates = append(estimates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estimates: %w", err)
	}

	return estimates, nil
}
