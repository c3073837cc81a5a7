package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// Status is the account state. Traders start pending until an admin approves them.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended:
		return true
	}

	return false
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string // E.164
	PasswordHash string
	Role         auth.Role
	Status       Status
	CompanyName  string
	Address      string
	GSTNumber    string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (u *User) Actor() auth.Actor {
	return auth.Actor{ID: u.ID, Role: u.Role}
}
