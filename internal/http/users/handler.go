package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/account"
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

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/customers", h.customers)
	r.Put("/profile", h.updateProfile)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
	r.Put("/{id}/status", h.setStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := user.ListFilter{Search: q.Get("search")}

	if s := q.Get("role"); s != "" {
		role := auth.Role(s)
		if !role.Valid() {
			respond.Error(w, r, apperr.Invalid("role", s, "unknown role"))
			return
		}

		filter.Role = &role
	}

	if s := q.Get("status"); s != "" {
		status := user.Status(s)
		if !status.Valid() {
			respond.Error(w, r, apperr.Invalid("status", s, "unknown status"))
			return
		}

		filter.Status = &status
	}

	us, err := h.svc.List(r.Context(), authn.Actor(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toList(us))
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	us, err := h.svc.Customers(r.Context(), authn.Actor(r), r.URL.Query().Get("search"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toList(us))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.Get(r.Context(), authn.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, account.ToUser(u))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.Approve(r.Context(), authn.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, account.ToUser(u))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.RejectTrader(r.Context(), authn.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, account.ToUser(u))
}

type statusRequest struct {
	Status user.Status `json:"status" validate:"required,oneof=active pending suspended"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.SetStatus(r.Context(), authn.Actor(r), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, account.ToUser(u))
}

type profileRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"companyName" validate:"omitempty,max=200"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), authn.Actor(r), user.ProfileParams{
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Address:     req.Address,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, account.ToUser(u))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), authn.Actor(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type listResponse struct {
	Users []account.UserResponse `json:"users"`
	Total int                    `json:"total"`
}

func toList(us []*user.User) listResponse {
	resp := listResponse{Users: make([]account.UserResponse, len(us)), Total: len(us)}
	for i, u := range us {
		resp.Users[i] = account.ToUser(u)
	}

	return resp
}
