package core

import (
	"crypto/subtle"
	"net/http"

	"floodwatch/internal/types"
)

// adminKeyHeader carries the operator key for mutating endpoints.
const adminKeyHeader = "X-Admin-Key"

// AdminOnly guards mutating endpoints (alert submission) behind the
// configured admin key. The comparison is constant-time to avoid leaking
// key material through response timing.
//
// The panel read endpoints are public; only alert submission requires this.
func (s *Server) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(adminKeyHeader)
		if provided == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyMissing,
				"X-Admin-Key header is required",
				nil,
			))
			return
		}

		expected := s.Config.Security.AdminAPIKey.Unmask()
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyInvalid,
				"admin key is not valid",
				nil,
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}
