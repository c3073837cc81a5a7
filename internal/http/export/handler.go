package export

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/invoices", h.download)
	r.Post("/invoices/summary", h.summary)
}

type exportRequest struct {
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	Status    *invoice.Status `json:"status,omitempty"`
}

func (req exportRequest) filter() (invoice.ListFilter, error) {
	if req.Status != nil && !req.Status.Valid() {
		return invoice.ListFilter{}, apperr.Invalid("status", string(*req.Status), "unknown invoice status")
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return invoice.ListFilter{}, apperr.Invalid("endDate", req.EndDate, "before startDate")
	}

	return invoice.ListFilter{From: req.StartDate, To: req.EndDate, Status: req.Status}, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (invoice.ListFilter, bool) {
	var req exportRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return invoice.ListFilter{}, false
		}
	}

	filter, err := req.filter()
	if err != nil {
		respond.Error(w, r, err)
		return invoice.ListFilter{}, false
	}

	return filter, true
}

// download streams the invoice register workbook. It is built in memory
// first so a failure still produces a JSON error instead of a truncated file.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decode(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer

	invoices, err := h.svc.Export(r.Context(), authn.Actor(r), filter, &buf)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"invoices_%s.xlsx\"", time.Now().Format("20060102")))
	w.Header().Set("X-Invoice-Count", strconv.Itoa(len(invoices)))

	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write workbook")
	}
}

type summaryResponse struct {
	Count   int    `json:"count"`
	Summary string `json:"summary"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decode(w, r)
	if !ok {
		return
	}

	invoices, err := h.svc.Export(r.Context(), authn.Actor(r), filter, io.Discard)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, summaryResponse{
		Count:   len(invoices),
		Summary: h.svc.GenerateSummary(invoices),
	})
}
