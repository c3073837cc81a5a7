package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	apihttp "github.com/MrJamesThe3rd/buildestimate/internal/http"
	accountHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/account"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	estimateHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/estimate"
	exportHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/invoice"
	statsHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/stats"
	unitHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/unit"
	usersHandler "github.com/MrJamesThe3rd/buildestimate/internal/http/users"
	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
	"github.com/MrJamesThe3rd/buildestimate/internal/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Example: `  # Serve on the configured port, applying pending migrations first
  buildestimate serve --migrate`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		applied, err := database.Migrate(ctx, a.db)
		if err != nil {
			a.close()
			return err
		}

		log.Info().Strs("applied", applied).Msg("migrations applied")
	}

	eventsCtx, stopEvents := context.WithCancel(context.Background())
	a.runEvents(eventsCtx)

	defer func() {
		stopEvents()
		a.close()
	}()

	opts := apihttp.Options{
		Log:            logger.WithComponent("http"),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Authenticate:   authn.Middleware(a.tokens, a.users),
	}

	if cfg.RateLimit.Enabled {
		if a.redis == nil {
			log.Warn().Msg("rate limiting enabled without redis, skipping")
		} else {
			limiter := ratelimit.New(a.redis, cfg.RateLimit.Requests, cfg.RateLimit.Window, "auth",
				logger.WithComponent("ratelimit"))
			opts.AuthRateLimit = limiter.Middleware
		}
	}

	router := apihttp.New(apihttp.Handlers{
		Account:   accountHandler.NewHandler(a.users),
		Users:     usersHandler.NewHandler(a.users),
		Estimates: estimateHandler.NewHandler(a.estimates, a.conversions, a.units),
		Invoices:  invoiceHandler.NewHandler(a.invoices, a.conversions, a.units),
		Units:     unitHandler.NewHandler(a.units),
		Import:    importHandler.NewHandler(a.imports),
		Export:    exportHandler.NewHandler(a.exports),
		Stats:     statsHandler.NewHandler(a.stats),
	}, opts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
