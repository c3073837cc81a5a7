package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/unit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindAlias(ctx context.Context, alias string) (document.Unit, error) {
	query := `SELECT unit FROM unit_aliases WHERE alias = $1`

	var u string

	err := s.db.QueryRowContext(ctx, query, alias).Scan(&u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", unit.ErrNotFound
		}

		return "", fmt.Errorf("finding unit alias: %w", err)
	}

	return document.Unit(u), nil
}

// SaveAlias inserts the alias or repoints an existing one.
func (s *Store) SaveAlias(ctx context.Context, alias string, u document.Unit) error {
	query := `
		INSERT INTO unit_aliases (alias, unit, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (alias) DO UPDATE SET unit = EXCLUDED.unit
	`

	if _, err := s.db.ExecContext(ctx, query, alias, string(u)); err != nil {
		return fmt.Errorf("saving unit alias: %w", err)
	}

	return nil
}

func (s *Store) ListAliases(ctx context.Context) ([]unit.Alias, error) {
	query := `SELECT alias, unit, created_at FROM unit_aliases ORDER BY alias`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing unit aliases: %w", err)
	}
	defer rows.Close()

	var out []unit.Alias

	for rows.Next() {
		var (
			a unit.Alias
			u string
		)

		if err := rows.Scan(&a.Alias, &u, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning unit alias: %w", err)
		}

		a.Unit = document.Unit(u)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit aliases: %w", err)
	}

	return out, nil
}
