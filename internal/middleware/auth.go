package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/audit"
	"github.com/classmark/attendance-server-go/internal/model"
	"github.com/classmark/attendance-server-go/internal/repository"
	"github.com/classmark/attendance-server-go/internal/util"
)

type contextKey string

const InstructorContextKey contextKey = "instructor"

func GetInstructor(ctx context.Context) *model.Instructor {
	if instructor, ok := ctx.Value(InstructorContextKey).(*model.Instructor); ok {
		return instructor
	}
	return nil
}

// InstructorAuthMiddleware authenticates API callers by Bearer key and
// enforces the instructor capability. Session management endpoints sit
// behind it; the public check-in endpoint does not.
type InstructorAuthMiddleware struct {
	instructorRepo repository.InstructorRepository
}

func NewInstructorAuthMiddleware(instructorRepo repository.InstructorRepository) *InstructorAuthMiddleware {
	return &InstructorAuthMiddleware{instructorRepo: instructorRepo}
}

func (m *InstructorAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractBearer(r)
		if key == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing API key",
			})
			return
		}

		keyHash := util.HashToken(key)
		instructor, err := m.instructorRepo.FindByAPIKeyHash(r.Context(), keyHash)
		if err != nil {
			log.Error().Err(err).Msg("instructor auth: database error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		if instructor == nil {
			audit.Log(r.Context(), audit.Event{
				Type: audit.EventAuthFailure,
				IP:   r.RemoteAddr,
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid API key",
			})
			return
		}

		if instructor.Role != model.RoleInstructor {
			audit.Log(r.Context(), audit.Event{
				Type:         audit.EventCapabilityDenied,
				InstructorID: instructor.ID,
				IP:           r.RemoteAddr,
			})
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Instructors only",
			})
			return
		}

		ctx := context.WithValue(r.Context(), InstructorContextKey, instructor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
