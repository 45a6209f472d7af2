package middleware

import (
	"net/http"

	"github.com/classmark/attendance-server-go/internal/audit"
	"github.com/classmark/attendance-server-go/internal/util"
)

// AdminAuthMiddleware guards provisioning endpoints with a single shared
// admin key from configuration. When no key is configured the endpoints
// are unavailable rather than open.
type AdminAuthMiddleware struct {
	adminKey string
}

func NewAdminAuthMiddleware(adminKey string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{adminKey: adminKey}
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.adminKey == "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "Admin not configured",
			})
			return
		}

		key := extractBearer(r)
		if key == "" || !util.ConstantTimeEqual(key, m.adminKey) {
			audit.Log(r.Context(), audit.Event{
				Type: audit.EventAuthFailure,
				IP:   r.RemoteAddr,
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid admin key",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
