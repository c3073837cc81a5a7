// Package account serves registration, login and the caller's own profile.
package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes are reachable without a token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// Routes expect authn.Middleware to have run.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
}

type registerRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone" validate:"required"`
	Password    string    `json:"password" validate:"required"`
	Role        auth.Role `json:"role" validate:"required,oneof=trader customer"`
	CompanyName string    `json:"companyName" validate:"max=200"`
	Address     string    `json:"address" validate:"max=500"`
	GSTNumber   string    `json:"gstNumber" validate:"max=20"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), user.RegisterParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Role:        req.Role,
		CompanyName: req.CompanyName,
		Address:     req.Address,
		GSTNumber:   req.GSTNumber,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, ToUser(u))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, loginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      ToUser(s.User),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, ToUser(authn.User(r)))
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Role        auth.Role   `json:"role"`
	Status      user.Status `json:"status"`
	CompanyName string      `json:"companyName,omitempty"`
	Address     string      `json:"address,omitempty"`
	GSTNumber   string      `json:"gstNumber,omitempty"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func ToUser(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		CompanyName: u.CompanyName,
		Address:     u.Address,
		GSTNumber:   u.GSTNumber,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
