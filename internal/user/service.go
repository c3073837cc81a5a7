package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

const minPasswordLen = 6

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filter ListFilter) ([]*User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfile(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id uuid.UUID, at time.Time) error
}

type TokenIssuer interface {
	Issue(a auth.Actor) (string, time.Time, error)
}

type Service struct {
	repo       Repository
	tokens     TokenIssuer
	region     string
	bcryptCost int
	now        func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer, region string) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		region:     region,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

type RegisterParams struct {
	Name        string
	Email       string
	Phone       string
	Password    string
	Role        auth.Role
	CompanyName string
	Address     string
	GSTNumber   string
}

type ListFilter struct {
	Role   *auth.Role
	Status *Status
	Search string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Register creates a trader or customer account. Traders start pending.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	if err := validateRegistration(p); err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(p.Phone, s.region)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Name:         strings.TrimSpace(p.Name),
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         p.Role,
		Status:       StatusActive,
		CompanyName:  strings.TrimSpace(p.CompanyName),
		Address:      strings.TrimSpace(p.Address),
		GSTNumber:    strings.TrimSpace(p.GSTNumber),
	}

	if p.Role == auth.RoleTrader {
		u.Status = StatusPending
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Invalid("email", u.Email, "already registered")
		}

		return nil, err
	}

	return u, nil
}

func validateRegistration(p RegisterParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Invalid("name", p.Name, "is required")
	}

	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperr.Invalid("email", p.Email, "not an email address")
	}

	if len(p.Password) < minPasswordLen {
		return apperr.Invalid("password", "", "must be at least %d characters", minPasswordLen)
	}

	switch p.Role {
	case auth.RoleCustomer:
	case auth.RoleTrader:
		if strings.TrimSpace(p.CompanyName) == "" {
			return apperr.Invalid("companyName", p.CompanyName, "is required for traders")
		}

		if strings.TrimSpace(p.Address) == "" {
			return apperr.Invalid("address", p.Address, "is required for traders")
		}
	default:
		return apperr.Invalid("role", string(p.Role), "must be trader or customer")
	}

	return nil
}

// Login checks the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := apperr.Forbidden("log in", "invalid credentials")

	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	if err := checkUsable(u); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}

	u.LastLoginAt = &now

	token, exp, err := s.tokens.Issue(u.Actor())
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate reloads the user behind a token and rejects unusable accounts.
func (s *Service) Authenticate(ctx context.Context, a auth.Actor) (*User, error) {
	u, err := s.repo.GetUser(ctx, a.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Forbidden("authenticate", "account no longer exists")
		}

		return nil, err
	}

	if err := checkUsable(u); err != nil {
		return nil, err
	}

	return u, nil
}

func checkUsable(u *User) error {
	switch {
	case u.Status == StatusSuspended:
		return apperr.Forbidden("log in", "account suspended")
	case u.Role == auth.RoleTrader && u.Status == StatusPending:
		return apperr.Forbidden("log in", "trader account pending approval")
	}

	return nil
}

// Get returns a user. Non-admins may only read themselves.
func (s *Service) Get(ctx context.Context, a auth.Actor, id uuid.UUID) (*User, error) {
	if !a.IsAdmin() && a.ID != id {
		return nil, &apperr.NotFoundError{Entity: "user", ID: id.String()}
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: "user", ID: id.String()}
		}

		return nil, err
	}

	return u, nil
}

func (s *Service) List(ctx context.Context, a auth.Actor, filter ListFilter) ([]*User, error) {
	if !a.IsAdmin() {
		return nil, apperr.Forbidden("list users", "admin only")
	}

	return s.repo.ListUsers(ctx, filter)
}

// Customers lists active customers a trader can address documents to.
func (s *Service) Customers(ctx context.Context, a auth.Actor, search string) ([]*User, error) {
	if !a.IsAdmin() && !a.IsTrader() {
		return nil, apperr.Forbidden("list customers", "traders only")
	}

	return s.repo.ListUsers(ctx, ListFilter{
		Role:   new(auth.RoleCustomer),
		Status: new(StatusActive),
		Search: search,
	})
}

// Approve activates a pending trader.
func (s *Service) Approve(ctx context.Context, a auth.Actor, id uuid.UUID) (*User, error) {
	return s.reviewTrader(ctx, a, id, "approve", StatusActive)
}

// RejectTrader suspends a pending trader application.
func (s *Service) RejectTrader(ctx context.Context, a auth.Actor, id uuid.UUID) (*User, error) {
	return s.reviewTrader(ctx, a, id, "reject", StatusSuspended)
}

func (s *Service) reviewTrader(ctx context.Context, a auth.Actor, id uuid.UUID, op string, to Status) (*User, error) {
	if !a.IsAdmin() {
		return nil, apperr.Forbidden(op+" trader", "admin only")
	}

	u, err := s.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if u.Role != auth.RoleTrader || u.Status != StatusPending {
		return nil, &apperr.InvalidStateError{
			Entity:  "user",
			ID:      id.String(),
			Op:      op,
			Status:  string(u.Status),
			Allowed: []string{string(StatusPending)},
			Reason:  "only pending traders can be reviewed",
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}

	u.Status = to

	return u, nil
}

// SetStatus lets an admin move any account between states.
func (s *Service) SetStatus(ctx context.Context, a auth.Actor, id uuid.UUID, status Status) (*User, error) {
	if !a.IsAdmin() {
		return nil, apperr.Forbidden("update user status", "admin only")
	}

	if !status.Valid() {
		return nil, apperr.Invalid("status", string(status), "unknown status")
	}

	if a.ID == id {
		return nil, apperr.Forbidden("update user status", "cannot change own status")
	}

	u, err := s.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	u.Status = status

	return u, nil
}

// ProfileParams carries the fields a user may change on their own account.
// Nil fields are left alone; company name and address apply to traders only.
type ProfileParams struct {
	Name        *string
	Phone       *string
	CompanyName *string
	Address     *string
}

// UpdateProfile applies a self-service profile change for the caller.
func (s *Service) UpdateProfile(ctx context.Context, a auth.Actor, p ProfileParams) (*User, error) {
	u, err := s.Get(ctx, a, a.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Invalid("name", *p.Name, "is required")
		}

		u.Name = name
	}

	if p.Phone != nil {
		phone, err := NormalizePhone(*p.Phone, s.region)
		if err != nil {
			return nil, err
		}

		u.Phone = phone
	}

	if u.Role == auth.RoleTrader {
		if p.CompanyName != nil {
			if u.CompanyName = strings.TrimSpace(*p.CompanyName); u.CompanyName == "" {
				return nil, apperr.Invalid("companyName", *p.CompanyName, "is required for traders")
			}
		}

		if p.Address != nil {
			if u.Address = strings.TrimSpace(*p.Address); u.Address == "" {
				return nil, apperr.Invalid("address", *p.Address, "is required for traders")
			}
		}
	}

	now := s.now()
	u.UpdatedAt = &now

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			return nil, apperr.Invalid("phone", u.Phone, "already registered")
		case errors.Is(err, ErrNotFound):
			return nil, &apperr.NotFoundError{Entity: "user", ID: u.ID.String()}
		}

		return nil, err
	}

	return u, nil
}

// Delete soft-deletes an account. Estimates and invoices keep their customer
// snapshot and stay readable by the other party. Admin accounts cannot be
// deleted.
func (s *Service) Delete(ctx context.Context, a auth.Actor, id uuid.UUID) error {
	if !a.IsAdmin() {
		return apperr.Forbidden("delete user", "admin only")
	}

	u, err := s.Get(ctx, a, id)
	if err != nil {
		return err
	}

	if u.Role == auth.RoleAdmin {
		return apperr.Invalid("id", id.String(), "admin accounts cannot be deleted")
	}

	if err := s.repo.DeleteUser(ctx, id, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &apperr.NotFoundError{Entity: "user", ID: id.String()}
		}

		return err
	}

	return nil
}

// CustomerInfo returns the contact snapshot stored on new documents.
func (s *Service) CustomerInfo(ctx context.Context, id uuid.UUID) (document.CustomerInfo, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return document.CustomerInfo{}, &apperr.NotFoundError{Entity: "customer", ID: id.String()}
		}

		return document.CustomerInfo{}, err
	}

	if u.Role != auth.RoleCustomer {
		return document.CustomerInfo{}, apperr.Invalid("customerId", id.String(), "not a customer")
	}

	if u.Status == StatusSuspended {
		return document.CustomerInfo{}, apperr.Invalid("customerId", id.String(), "customer account suspended")
	}

	return document.CustomerInfo{
		Name:    u.Name,
		Phone:   u.Phone,
		Email:   u.Email,
		Address: u.Address,
	}, nil
}
