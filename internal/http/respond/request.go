package respond

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
)

// PathID parses a UUID path parameter.
func PathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, raw, "not a valid id")
	}

	return id, nil
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(name, raw, "not a valid id")
	}

	return &id, nil
}

// QueryInt parses an optional integer query parameter, returning 0 when absent.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid(name, raw, "not a number")
	}

	return n, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperr.Invalid(name, raw, "expected YYYY-MM-DD")
	}

	return &t, nil
}
