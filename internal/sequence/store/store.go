package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Increment creates the counter on first use and returns the new value.
func (s *Store) Increment(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO sequences (name, value, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1, updated_at = NOW()
		RETURNING value
	`

	var value int64
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("incrementing sequence: %w", err)
	}

	return value, nil
}
