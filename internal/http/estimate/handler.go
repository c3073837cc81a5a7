package estimate

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	invoicehttp "github.com/MrJamesThe3rd/buildestimate/internal/http/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/lineitem"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
)

type Handler struct {
	svc        *estimate.Service
	conversion *conversion.Service
	units      lineitem.UnitNormalizer
	now        func() time.Time
}

func NewHandler(svc *estimate.Service, conv *conversion.Service, units lineitem.UnitNormalizer) *Handler {
	return &Handler{svc: svc, conversion: conv, units: units, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/send", h.send)
	r.Post("/{id}/accept", h.accept)
	r.Post("/{id}/reject", h.reject)
	r.Post("/{id}/expire-check", h.checkExpiry)
	r.Post("/{id}/convert", h.convert)
}

type createEstimateRequest struct {
	CustomerID uuid.UUID               `json:"customerId" validate:"required"`
	Items      []lineitem.ItemRequest  `json:"items" validate:"required,min=1,dive"`
	Charges    lineitem.ChargesRequest `json:"charges"`
	ValidUntil time.Time               `json:"validUntil" validate:"required"`
	Notes      string                  `json:"notes"`
	Terms      string                  `json:"terms"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEstimateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := lineitem.Items(r.Context(), h.units, req.Items)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), authn.Actor(r), estimate.CreateParams{
		CustomerID: req.CustomerID,
		Items:      items,
		Charges:    req.Charges.Charges(),
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		Terms:      req.Terms,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(e, h.now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := estimate.ListParams{Search: q.Get("search")}

	if s := q.Get("status"); s != "" {
		status := estimate.Status(s)
		if !status.Valid() {
			respond.Error(w, r, invalidStatus(s))
			return
		}

		p.Status = &status
	}

	var err error

	if p.TraderID, err = respond.QueryUUID(r, "traderId"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if p.CustomerID, err = respond.QueryUUID(r, "customerId"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if p.Page, err = respond.QueryInt(r, "page"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if p.Limit, err = respond.QueryInt(r, "limit"); err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), authn.Actor(r), p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toPage(page, h.now()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Get)
}

type updateEstimateRequest struct {
	Items      []lineitem.ItemRequest   `json:"items" validate:"omitempty,dive"`
	Charges    *lineitem.ChargesRequest `json:"charges"`
	ValidUntil *time.Time               `json:"validUntil"`
	Notes      *string                  `json:"notes"`
	Terms      *string                  `json:"terms"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateEstimateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := lineitem.Items(r.Context(), h.units, req.Items)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p := estimate.UpdateParams{
		Items:      items,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		Terms:      req.Terms,
	}

	if req.Charges != nil {
		c := req.Charges.Charges()
		p.Charges = &c
	}

	e, err := h.svc.Update(r.Context(), authn.Actor(r), id, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(e, h.now()))
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

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Send)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Accept)
}

func (h *Handler) checkExpiry(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.CheckExpiry)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req rejectRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	e, err := h.svc.Reject(r.Context(), authn.Actor(r), id, req.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(e, h.now()))
}

type convertRequest struct {
	DueDate *time.Time `json:"dueDate"`
	Notes   *string    `json:"notes"`
	Terms   *string    `json:"terms"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req convertRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	res, err := h.conversion.Convert(r.Context(), authn.Actor(r), id, conversion.Params{
		DueDate: req.DueDate,
		Notes:   req.Notes,
		Terms:   req.Terms,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	now := h.now()
	respond.JSON(w, r, http.StatusCreated, convertResponse{
		Invoice:  invoicehttp.ToResponse(res.Invoice),
		Estimate: toResponse(res.Estimate, now),
	})
}

type convertResponse struct {
	Invoice  invoicehttp.Response `json:"invoice"`
	Estimate estimateResponse     `json:"estimate"`
}

type transition func(ctx context.Context, a auth.Actor, id uuid.UUID) (*estimate.Estimate, error)

// withID runs a single-estimate operation addressed by the id path parameter.
func (h *Handler) withID(w http.ResponseWriter, r *http.Request, op transition) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := op(r.Context(), authn.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(e, h.now()))
}

func invalidStatus(s string) error {
	return apperr.Invalid("status", s, "unknown estimate status")
}
