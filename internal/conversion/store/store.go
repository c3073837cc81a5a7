package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	estimatestore "github.com/MrJamesThe3rd/buildestimate/internal/estimate/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	invoicestore "github.com/MrJamesThe3rd/buildestimate/internal/invoice/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type conversionTx struct {
	tx        *sql.Tx
	estimates *estimatestore.Store
	invoices  *invoicestore.Store
}

func (s *Store) BeginConversion(ctx context.Context) (conversion.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning conversion tx: %w", err)
	}

	return &conversionTx{
		tx:        tx,
		estimates: estimatestore.NewTx(tx),
		invoices:  invoicestore.NewTx(tx),
	}, nil
}

func (c *conversionTx) Commit() error   { return c.tx.Commit() }
func (c *conversionTx) Rollback() error { return c.tx.Rollback() }

func (c *conversionTx) LockEstimate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	return c.estimates.GetEstimateForUpdate(ctx, id)
}

func (c *conversionTx) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return c.invoices.CreateInvoice(ctx, inv)
}

func (c *conversionTx) MarkEstimateConverted(ctx context.Context, id, invoiceID uuid.UUID, at time.Time) error {
	return c.estimates.MarkConverted(ctx, id, invoiceID, at)
}
