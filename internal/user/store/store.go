package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectUserColumns = `
	id, name, email, phone, password_hash, role, status,
	company_name, address, gst_number, last_login_at, created_at, updated_at
`

func scanUser(s scanner) (*user.User, error) {
	var (
		u                           user.User
		role, status                string
		company, address, gstNumber sql.NullString
	)

	if err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role, &status,
		&company, &address, &gstNumber, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = auth.Role(role)
	u.Status = user.Status(status)
	u.CompanyName = company.String
	u.Address = address.String
	u.GSTNumber = gstNumber.String

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (name, email, phone, password_hash, role, status, company_name, address, gst_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status,
		u.CompanyName, u.Address, u.GSTNumber,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicate
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, filter user.ListFilter) ([]*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Role != nil {
		query += fmt.Sprintf(" AND role = $%d", argIdx)

		args = append(args, *filter.Role)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR company_name ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx)

		args = append(args, database.Contains(filter.Search))
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status user.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating user status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (s *Store) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id,
	); err != nil {
		return fmt.Errorf("recording login: %w", err)
	}

	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, company_name = NULLIF($3, ''), address = NULLIF($4, ''), updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, u.Name, u.Phone, u.CompanyName, u.Address, u.UpdatedAt, u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicate
		}

		return fmt.Errorf("updating profile: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}

	return nil
}

// DeleteUser marks the account deleted. The row stays because estimates and
// invoices reference it.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}

	return nil
}
