package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/buildestimate/internal/http/account"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/estimate"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/importcsv"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/stats"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/unit"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/users"
)

// Handlers groups the v1 resource handlers.
type Handlers struct {
	Account   *account.Handler
	Users     *users.Handler
	Estimates *estimate.Handler
	Invoices  *invoice.Handler
	Units     *unit.Handler
	Import    *importcsv.Handler
	Export    *export.Handler
	Stats     *stats.Handler
}

// Options carry the cross-cutting middleware built by the caller.
type Options struct {
	Log            zerolog.Logger
	AllowedOrigins []string
	// Authenticate guards every route except registration, login and public stats.
	Authenticate func(http.Handler) http.Handler
	// AuthRateLimit is applied to the auth routes. Nil disables it.
	AuthRateLimit func(http.Handler) http.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(opts.Log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Invoice-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.AuthRateLimit != nil {
				r.Use(opts.AuthRateLimit)
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Account.PublicRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(opts.Authenticate)
				h.Account.Routes(r)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			h.Stats.PublicRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(opts.Authenticate)
				h.Stats.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Users.Routes(r)
			})

			r.Route("/estimates", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Estimates.Routes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Invoices.Routes(r)
			})

			r.Route("/units", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Units.Routes(r)
			})

			r.Route("/import", h.Import.Routes)

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Export.Routes(r)
			})
		})
	})

	return router
}
