package invoice

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/lineitem"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

type Handler struct {
	svc        *invoice.Service
	conversion *conversion.Service
	units      lineitem.UnitNormalizer
}

func NewHandler(svc *invoice.Service, conv *conversion.Service, units lineitem.UnitNormalizer) *Handler {
	return &Handler{svc: svc, conversion: conv, units: units}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/from-estimate/{estimateID}", h.fromEstimate)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/send", h.send)
	r.Post("/{id}/payments", h.addPayment)
	r.Post("/{id}/cancel", h.cancel)
	r.Get("/{id}/payment-link", h.paymentLink)
}

type createInvoiceRequest struct {
	CustomerID uuid.UUID               `json:"customerId" validate:"required"`
	Items      []lineitem.ItemRequest  `json:"items" validate:"required,min=1,dive"`
	Charges    lineitem.ChargesRequest `json:"charges"`
	DueDate    *time.Time              `json:"dueDate"`
	Notes      string                  `json:"notes"`
	Terms      string                  `json:"terms"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := lineitem.Items(r.Context(), h.units, req.Items)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), authn.Actor(r), invoice.CreateParams{
		CustomerID: req.CustomerID,
		Items:      items,
		Charges:    req.Charges.Charges(),
		DueDate:    req.DueDate,
		Notes:      req.Notes,
		Terms:      req.Terms,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, ToResponse(inv))
}

type fromEstimateRequest struct {
	DueDate *time.Time `json:"dueDate"`
	Notes   *string    `json:"notes"`
	Terms   *string    `json:"terms"`
}

func (h *Handler) fromEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "estimateID")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req fromEstimateRequest
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

	respond.JSON(w, r, http.StatusCreated, ToResponse(res.Invoice))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := invoice.ListParams{Search: q.Get("search")}

	if s := q.Get("status"); s != "" {
		status := invoice.Status(s)
		if !status.Valid() {
			respond.Error(w, r, apperr.Invalid("status", s, "unknown invoice status"))
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

	respond.JSON(w, r, http.StatusOK, toPage(page))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Get)
}

type updateInvoiceRequest struct {
	Items   []lineitem.ItemRequest   `json:"items" validate:"omitempty,dive"`
	Charges *lineitem.ChargesRequest `json:"charges"`
	DueDate *time.Time               `json:"dueDate"`
	Notes   *string                  `json:"notes"`
	Terms   *string                  `json:"terms"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := lineitem.Items(r.Context(), h.units, req.Items)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p := invoice.UpdateParams{
		Items:   items,
		DueDate: req.DueDate,
		Notes:   req.Notes,
		Terms:   req.Terms,
	}

	if req.Charges != nil {
		c := req.Charges.Charges()
		p.Charges = &c
	}

	inv, err := h.svc.Update(r.Context(), authn.Actor(r), id, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(inv))
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

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, h.svc.Cancel)
}

type paymentRequest struct {
	Amount        decimal.Decimal       `json:"amount"`
	Method        invoice.PaymentMethod `json:"method" validate:"required"`
	TransactionID string                `json:"transactionId" validate:"max=100"`
	PaymentDate   *time.Time            `json:"paymentDate"`
	Status        invoice.PaymentStatus `json:"status"`
	Notes         string                `json:"notes" validate:"max=1000"`
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req paymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.AddPayment(r.Context(), authn.Actor(r), id, invoice.PaymentParams{
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		PaymentDate:   req.PaymentDate,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, ToResponse(inv))
}

func (h *Handler) paymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	a := authn.Actor(r)

	link, err := h.svc.PaymentLink(r.Context(), a, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), a, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, paymentLinkResponse{Link: link, Amount: inv.BalanceAmount, Invoice: inv.Number})
}

type operation func(ctx context.Context, a auth.Actor, id uuid.UUID) (*invoice.Invoice, error)

// withID runs a single-invoice operation addressed by the id path parameter.
func (h *Handler) withID(w http.ResponseWriter, r *http.Request, op operation) {
	id, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := op(r.Context(), authn.Actor(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, ToResponse(inv))
}
