// Package main is the entry point for the flood panel API server.
//
// It initializes the configuration, connects the PostgreSQL pool, builds the
// resilient upstream clients and the panel controller, wires the HTTP
// handlers onto the core chassis (middleware, routing, health checks), and
// starts listening for requests.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"floodwatch/internal/api/handlers"
	"floodwatch/internal/config"
	"floodwatch/internal/core"
	"floodwatch/internal/db"
	"floodwatch/internal/notifications"
	"floodwatch/internal/panel"
	"floodwatch/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("flood panel API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database pool.
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}

	locationRepo := db.NewLocationRepository(pool)
	alertRepo := db.NewAlertRepository(pool)
	contactRepo := db.NewContactRepository(pool)
	notificationRepo := db.NewNotificationRepository(pool)

	// Upstream clients share one BaseClient so a failing flood service trips
	// a single breaker for all three pipelines.
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	baseClient := upstream.NewBaseClient(
		httpClient,
		"flood-service",
		upstream.RetryPolicy{
			MaxRetries: cfg.Upstream.MaxRetries,
			MinWait:    500 * time.Millisecond,
			MaxWait:    10 * time.Second,
		},
		cfg.Upstream.UserAgent,
	)

	cache, err := upstream.NewCache(cfg.Upstream.CacheTTL)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating response cache: %w", err)
	}

	seriesClient := upstream.NewSeriesClient(baseClient, cfg.Upstream.BaseURL, cache, logger)
	predictionClient := upstream.NewPredictionClient(baseClient, cfg.Upstream.BaseURL, logger)
	decisionClient := upstream.NewDecisionClient(baseClient, cfg.Upstream.BaseURL, logger)

	// Panel controller, populated before the server starts accepting
	// requests. Individual fetch failures leave fallback views in place.
	controller := panel.NewController(seriesClient, predictionClient, decisionClient, logger)
	controller.Init(ctx)

	dispatcher := notifications.NewDispatcher(contactRepo, notificationRepo, nil, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.RegisterCloser(func() error {
		pool.Close()
		return nil
	})
	srv.RegisterCloser(cache.Close)
	srv.HealthProbes = append(srv.HealthProbes,
		db.NewHealthProbe(pool),
		upstream.NewHealthProbe(httpClient, cfg.Upstream.BaseURL),
	)

	panelHandler := handlers.NewPanelHandler(controller, srv.Validator, logger)
	locationHandler := handlers.NewLocationHandler(locationRepo, logger)
	alertHandler := handlers.NewAlertHandler(
		alertRepo,
		locationRepo,
		dispatcher,
		srv.Validator,
		logger,
		srv.AdminOnly,
	)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { panelHandler.RegisterRoutes(r) },
		func(r chi.Router) { locationHandler.RegisterRoutes(r) },
		func(r chi.Router) { alertHandler.RegisterRoutes(r) },
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// newPool builds the pgx connection pool from the database configuration.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Channel to capture server errors from ListenAndServe.
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with a 10-second deadline.
	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("closing server dependencies failed", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds the process-wide structured JSON logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
