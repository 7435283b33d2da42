package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/internal/presentation/tui"
	httpAdapter "github.com/aretw0/gss/pkg/adapters/http"
	"github.com/aretw0/gss/pkg/metrics"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves POST /api/solve, GET and DELETE /api/history, GET /api/events (SSE),
/health, /info, /openapi.yaml and, when enabled, /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var collector *metrics.Collector
			opts := []httpAdapter.Option{
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithMaxBodyBytes(a.cfg.Server.MaxBodyBytes),
			}
			if a.cfg.Server.Metrics {
				collector = metrics.New()
				opts = append(opts, httpAdapter.WithMetricsHandler(collector.Handler()))
			}

			solver, err := a.solver(ctx, collector)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           httpAdapter.NewHandler(solver, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}
			tui.PrintBanner(cmd.ErrOrStderr(), gss.Version)
			return serve(ctx, srv, a.cfg.Server.ShutdownTimeout, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides server.addr)")
	return cmd
}

// serve blocks until ctx is done, then gives in-flight requests timeout to finish.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, a *app) error {
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting GSS server", "addr", srv.Addr, "backend", a.cfg.History.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("graceful shutdown did not complete", "timeout", timeout, "err", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		a.logger.Info("GSS server stopped gracefully")
		return nil
	}
}
