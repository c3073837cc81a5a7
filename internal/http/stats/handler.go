package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/stats"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

type Handler struct {
	svc *stats.Service
}

func NewHandler(svc *stats.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/public", h.public)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
}

func (h *Handler) public(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Public(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, p)
}

type userCountResponse struct {
	Role   auth.Role   `json:"role"`
	Status user.Status `json:"status"`
	Count  int         `json:"count"`
}

type dashboardResponse struct {
	Users     []userCountResponse     `json:"users,omitempty"`
	Estimates map[estimate.Status]int `json:"estimates"`
	Invoices  map[invoice.Status]int  `json:"invoices"`
	Revenue   decimal.Decimal         `json:"revenue"`
	Pending   decimal.Decimal         `json:"pendingAmount"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), authn.Actor(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := dashboardResponse{
		Estimates: d.Estimates,
		Invoices:  d.Invoices,
		Revenue:   d.Revenue,
		Pending:   d.Pending,
	}

	for _, c := range d.Users {
		resp.Users = append(resp.Users, userCountResponse{Role: c.Role, Status: c.Status, Count: c.Count})
	}

	respond.JSON(w, r, http.StatusOK, resp)
}
