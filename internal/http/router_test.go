package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	api "github.com/MrJamesThe3rd/buildestimate/internal/http"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/account"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/importcsv"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/stats"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/unit"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/users"
)

// The handlers are never reached in these tests: every request is stopped by
// a middleware first.
func newRouter(limit func(http.Handler) http.Handler) http.Handler {
	return api.New(api.Handlers{
		Account:   &account.Handler{},
		Users:     &users.Handler{},
		Estimates: &estimate.Handler{},
		Invoices:  &invoice.Handler{},
		Units:     &unit.Handler{},
		Import:    &importcsv.Handler{},
		Export:    &export.Handler{},
		Stats:     &stats.Handler{},
	}, api.Options{
		Log:            zerolog.Nop(),
		AllowedOrigins: []string{"https://app.example.in"},
		Authenticate: func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		},
		AuthRateLimit: limit,
	})
}

func TestNew_Gating(t *testing.T) {
	type testCase struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
	}

	tests := []testCase{
		{name: "Health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "Estimates need a token", method: http.MethodGet, path: "/api/v1/estimates", wantStatus: http.StatusUnauthorized},
		{name: "Invoices need a token", method: http.MethodPost, path: "/api/v1/invoices", wantStatus: http.StatusUnauthorized},
		{name: "Import needs a token", method: http.MethodPost, path: "/api/v1/import/items", wantStatus: http.StatusUnauthorized},
		{name: "Dashboard needs a token", method: http.MethodGet, path: "/api/v1/stats/dashboard", wantStatus: http.StatusUnauthorized},
		{name: "Profile update needs a token", method: http.MethodPut, path: "/api/v1/users/profile", wantStatus: http.StatusUnauthorized},
		{name: "User delete needs a token", method: http.MethodDelete, path: "/api/v1/users/3f1c2a9e-5d4b-4c8a-9e7f-1a2b3c4d5e6f", wantStatus: http.StatusUnauthorized},
		{name: "Me needs a token", method: http.MethodGet, path: "/api/v1/auth/me", wantStatus: http.StatusUnauthorized},
		{
			name:        "Login rejects non-JSON",
			method:      http.MethodPost,
			path:        "/api/v1/auth/login",
			contentType: "text/plain",
			body:        "email=a@b.in",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{name: "Unknown route", method: http.MethodGet, path: "/api/v2/estimates", wantStatus: http.StatusNotFound},
	}

	router := newRouter(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestNew_AuthRateLimit(t *testing.T) {
	var limited []string

	router := newRouter(func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited = append(limited, r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
		})
	})

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/register"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, []string{"/api/v1/auth/login", "/api/v1/auth/register"}, limited)
}

func TestNew_CORS(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/estimates", nil)
	req.Header.Set("Origin", "https://app.example.in")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.in", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
