package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/config"
)

type stubProbe struct {
	name string
	err  error
}

func (p stubProbe) Name() string { return p.name }

func (p stubProbe) Check(ctx context.Context) error { return p.err }

func newHealthTestServer(t *testing.T, probes ...HealthProbe) *Server {
	t.Helper()
	srv, err := NewServer(&config.Config{Environment: "local"}, slog.Default())
	require.NoError(t, err)
	srv.HealthProbes = probes
	return srv
}

func TestHandleHealthAllHealthy(t *testing.T) {
	srv := newHealthTestServer(t,
		stubProbe{name: "database"},
		stubProbe{name: "upstream"},
	)

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHandleHealthReportsFailingComponent(t *testing.T) {
	srv := newHealthTestServer(t,
		stubProbe{name: "database"},
		stubProbe{name: "upstream", err: errors.New("connection refused")},
	)

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"upstream"`)
}

func TestHandleHealthNoProbes(t *testing.T) {
	srv := newHealthTestServer(t)

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
