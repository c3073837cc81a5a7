package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/lineitem"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/importer"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/items", h.importItems)
}

type importResponse struct {
	Imported int                     `json:"imported"`
	Items    []lineitem.ItemResponse `json:"items"`
}

// importItems parses an uploaded price list into draft line items. The
// client attaches them to an estimate or invoice in a separate request.
func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, apperr.Invalid("file", "", "failed to parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Invalid("file", "", "file field is required"))
		return
	}
	defer file.Close()

	format := importer.FormatOf(header.Filename)
	if f := r.FormValue("format"); f != "" {
		format = importer.Format(f)
	}

	items, err := h.importSvc.Import(r.Context(), authn.Actor(r), format, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(items))
}

func toResponse(items []document.LineItem) importResponse {
	return importResponse{
		Imported: len(items),
		Items:    lineitem.ToItems(items),
	}
}
