package core

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/config"
)

func newAuthTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Environment: "local",
		Security: config.SecurityConfig{
			AdminAPIKey: config.SecretString("0123456789abcdef0123"),
		},
	}
	srv, err := NewServer(cfg, slog.Default())
	require.NoError(t, err)
	return srv
}

func TestAdminOnly(t *testing.T) {
	srv := newAuthTestServer(t)

	var reached bool
	guarded := srv.AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing key", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
		assert.Contains(t, rec.Body.String(), "auth_admin_key_missing")
	})

	t.Run("wrong key", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Admin-Key", "wrong-key-wrong-key")
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
		assert.Contains(t, rec.Body.String(), "auth_admin_key_invalid")
	})

	t.Run("correct key", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Admin-Key", "0123456789abcdef0123")
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, reached)
	})
}
