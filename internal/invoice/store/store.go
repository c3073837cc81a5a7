package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
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

func NewTx(tx *sql.Tx) *Store {
	return &Store{db: tx}
}

type scanner interface {
	Scan(dest ...any) error
}

type paymentRecord struct {
	ID            uuid.UUID             `json:"id"`
	Amount        decimal.Decimal       `json:"amount"`
	Method        invoice.PaymentMethod `json:"method"`
	TransactionID string                `json:"transactionId,omitempty"`
	PaymentDate   time.Time             `json:"paymentDate"`
	Status        invoice.PaymentStatus `json:"status"`
	Notes         string                `json:"notes,omitempty"`
}

func encodePayments(payments []invoice.Payment) ([]byte, error) {
	records := make([]paymentRecord, len(payments))
	for i, p := range payments {
		records[i] = paymentRecord(p)
	}

	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding payments: %w", err)
	}

	return b, nil
}

func decodePayments(b []byte) ([]invoice.Payment, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var records []paymentRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decoding payments: %w", err)
	}

	payments := make([]invoice.Payment, len(records))
	for i, r := range records {
		payments[i] = invoice.Payment(r)
	}

	return payments, nil
}

const selectInvoiceColumns = `
	id, number, estimate_id, trader_id, customer_id,
	customer_name, customer_phone, customer_email, customer_address,
	items, subtotal, discount_percent, discount_amount, loading_charges,
	taxable_amount, tax_percent, tax_amount, total_amount,
	paid_amount, balance_amount, status, due_date, payments, notes, terms,
	sent_at, viewed_at, paid_at, cancelled_at, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv             invoice.Invoice
		items, payments []byte
		status          string
	)

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.EstimateID, &inv.TraderID, &inv.CustomerID,
		&inv.Customer.Name, &inv.Customer.Phone, &inv.Customer.Email, &inv.Customer.Address,
		&items, &inv.Totals.Subtotal, &inv.Charges.DiscountPercent, &inv.Totals.DiscountAmount, &inv.Charges.LoadingCharges,
		&inv.Totals.TaxableAmount, &inv.Charges.TaxPercent, &inv.Totals.TaxAmount, &inv.Totals.TotalAmount,
		&inv.PaidAmount, &inv.BalanceAmount, &status, &inv.DueDate, &payments, &inv.Notes, &inv.Terms,
		&inv.SentAt, &inv.ViewedAt, &inv.PaidAt, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error

	if inv.Items, err = document.DecodeItems(items); err != nil {
		return nil, err
	}

	if inv.Payments, err = decodePayments(payments); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := document.EncodeItems(inv.Items)
	if err != nil {
		return err
	}

	payments, err := encodePayments(inv.Payments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (
			number, estimate_id, trader_id, customer_id,
			customer_name, customer_phone, customer_email, customer_address,
			items, subtotal, discount_percent, discount_amount, loading_charges,
			taxable_amount, tax_percent, tax_amount, total_amount,
			paid_amount, balance_amount, status, due_date, payments, notes, terms,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.Number, inv.EstimateID, inv.TraderID, inv.CustomerID,
		inv.Customer.Name, inv.Customer.Phone, inv.Customer.Email, inv.Customer.Address,
		items, inv.Totals.Subtotal, inv.Charges.DiscountPercent, inv.Totals.DiscountAmount, inv.Charges.LoadingCharges,
		inv.Totals.TaxableAmount, inv.Charges.TaxPercent, inv.Totals.TaxAmount, inv.Totals.TotalAmount,
		inv.PaidAmount, inv.BalanceAmount, inv.Status, inv.DueDate, payments, inv.Notes, inv.Terms,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := document.EncodeItems(inv.Items)
	if err != nil {
		return err
	}

	payments, err := encodePayments(inv.Payments)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET items = $1, subtotal = $2, discount_percent = $3, discount_amount = $4, loading_charges = $5,
			taxable_amount = $6, tax_percent = $7, tax_amount = $8, total_amount = $9,
			paid_amount = $10, balance_amount = $11, status = $12, due_date = $13, payments = $14,
			notes = $15, terms = $16, sent_at = $17, viewed_at = $18, paid_at = $19, cancelled_at = $20,
			updated_at = NOW()
		WHERE id = $21
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		items, inv.Totals.Subtotal, inv.Charges.DiscountPercent, inv.Totals.DiscountAmount, inv.Charges.LoadingCharges,
		inv.Totals.TaxableAmount, inv.Charges.TaxPercent, inv.Totals.TaxAmount, inv.Totals.TotalAmount,
		inv.PaidAmount, inv.BalanceAmount, inv.Status, inv.DueDate, payments,
		inv.Notes, inv.Terms, inv.SentAt, inv.ViewedAt, inv.PaidAt, inv.CancelledAt,
		inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	// A converted estimate keeps its flag; its invoice_id is nulled by the FK.
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND paid_amount = 0`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

func whereClause(filter invoice.ListFilter) (string, []any) {
	where := ` WHERE TRUE`

	var args []any

	argIdx := 1

	add := func(cond string, v any) {
		where += fmt.Sprintf(cond, argIdx)

		args = append(args, v)
		argIdx++
	}

	if filter.TraderID != nil {
		add(" AND trader_id = $%d", *filter.TraderID)
	}

	if filter.CustomerID != nil {
		add(" AND customer_id = $%d", *filter.CustomerID)
	}

	if filter.Status != nil {
		add(" AND status = $%d", *filter.Status)
	}

	if filter.From != nil {
		add(" AND created_at >= $%d", *filter.From)
	}

	if filter.To != nil {
		add(" AND created_at <= $%d", *filter.To)
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (number ILIKE $%d OR customer_name ILIKE $%d OR customer_phone ILIKE $%d)",
			argIdx, argIdx, argIdx)

		args = append(args, database.Contains(filter.Search))
	}

	return where, args
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	where, args := whereClause(filter)

	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices` + where + ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	return s.list(ctx, query, args...)
}

func (s *Store) CountInvoices(ctx context.Context, filter invoice.ListFilter) (int, error) {
	where, args := whereClause(filter)

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting invoices: %w", err)
	}

	return n, nil
}

func (s *Store) ListOverdue(ctx context.Context, now time.Time) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices
		WHERE status NOT IN ($1, $2, $3) AND due_date < $4 AND balance_amount > 0
		ORDER BY due_date ASC`

	return s.list(ctx, query, invoice.StatusPaid, invoice.StatusCancelled, invoice.StatusOverdue, now)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return invoices, nil
}
