// Package core provides the API chassis for the flood panel service.
// It creates a chi router and enforces cross-cutting concerns -- security,
// logging, observability, and error handling -- before requests reach
// domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floodwatch/internal/config"
)

// Server encapsulates all dependencies for the panel API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// HealthProbes are registered by the entry point for each critical
	// dependency (database, upstream service).
	HealthProbes []HealthProbe

	// V1RouteRegistrars are populated by the application entry point to mount
	// domain handler routes under /v1. This indirection avoids import cycles
	// between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	// closers are shut down (in registration order) during Shutdown.
	closers []func() error

	// Internal router
	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a "fail-fast" check on critical
// configuration.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
// This is used internally by route-mounting methods and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// RegisterCloser adds a resource cleanup function to run during Shutdown
// (database pools, caches with background goroutines).
func (s *Server) RegisterCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Shutdown performs a graceful termination of server resources: it runs all
// registered closers in order and logs (but does not abort on) individual
// failures, returning the first error encountered.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	var firstErr error
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			s.Logger.Error("error closing server resource", "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("closing server resource: %w", err)
			}
		}
	}

	s.Logger.Info("server shutdown complete")
	return firstErr
}
