package unit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/unit"
)

type Handler struct {
	svc *unit.Service
}

func NewHandler(svc *unit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/aliases", h.learn)
}

type entryResponse struct {
	Code  document.Unit `json:"code"`
	Label string        `json:"label"`
}

type aliasResponse struct {
	Alias     string        `json:"alias"`
	Unit      document.Unit `json:"unit"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
}

type listResponse struct {
	Units   []entryResponse `json:"units"`
	Aliases []aliasResponse `json:"aliases"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.svc.Aliases(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	vocab := h.svc.Vocabulary()

	resp := listResponse{
		Units:   make([]entryResponse, len(vocab)),
		Aliases: make([]aliasResponse, len(aliases)),
	}

	for i, e := range vocab {
		resp.Units[i] = entryResponse{Code: e.Code, Label: e.Label}
	}

	for i, a := range aliases {
		resp.Aliases[i] = toAlias(a)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

type learnRequest struct {
	Alias string        `json:"alias" validate:"required,max=50"`
	Unit  document.Unit `json:"unit" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.Learn(r.Context(), authn.Actor(r), req.Alias, req.Unit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toAlias(a))
}

func toAlias(a unit.Alias) aliasResponse {
	resp := aliasResponse{Alias: a.Alias, Unit: a.Unit}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = &a.CreatedAt
	}

	return resp
}
