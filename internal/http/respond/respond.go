// Package respond writes JSON responses and maps domain errors onto HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

type errorResponse struct {
	Error  string            `json:"error"`
	Field  string            `json:"field,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("body", "", "malformed JSON: %v", err)
	}

	return validate.Struct(dst)
}

// Error writes err with the status its kind maps to. Unknown errors are
// logged and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *apperr.ValidationError
		vfe validator.ValidationErrors
	)

	switch {
	case errors.As(err, &vfe):
		fields := make(map[string]string, len(vfe))
		for _, fe := range vfe {
			fields[fieldPath(fe)] = fe.Tag()
		}

		JSON(w, r, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
	case errors.As(err, &ve):
		JSON(w, r, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, apperr.ErrInvalidState):
		JSON(w, r, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		JSON(w, r, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, r, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		JSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Unauthenticated writes a 401 for a missing or unusable credential.
func Unauthenticated(w http.ResponseWriter, r *http.Request, reason string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	JSON(w, r, http.StatusUnauthorized, errorResponse{Error: reason})
}

// fieldPath drops the top-level struct name validator prefixes namespaces with.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return fe.Field()
}
