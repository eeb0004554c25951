// Command server starts the jobfit HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/jobfit/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobfit/internal/adapter/observability"
	"github.com/fairyhunter13/jobfit/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/jobfit/internal/app"
	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// The store is optional: without DB_URL the server scores and normalizes
	// but /v1/ingest answers 503.
	var (
		store  domain.JobStore
		pinger app.Pinger
	)
	if cfg.DBURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		repo := postgres.NewJobRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		store, pinger = repo, pool
	} else {
		slog.Warn("DB_URL not set, ingest disabled")
	}

	svcs, err := app.BuildServices(ctx, cfg, store)
	if err != nil {
		return err
	}

	srv := httpserver.NewServer(cfg, svcs.Fit, svcs.Ingest, app.BuildReadinessChecks(pinger, svcs.AI)...)
	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return srvHTTP.Shutdown(shutdownCtx)
}
