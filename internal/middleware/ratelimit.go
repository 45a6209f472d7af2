package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/classmark/attendance-server-go/internal/audit"
	"github.com/classmark/attendance-server-go/internal/config"
	"github.com/classmark/attendance-server-go/internal/service"
)

// IPRateLimitMiddleware throttles the public check-in endpoint per client IP.
// A limit of zero disables it.
type IPRateLimitMiddleware struct {
	limiter *service.RateLimiter
	limit   int
	window  time.Duration
	prefix  string
}

func NewIPRateLimitMiddleware(limiter *service.RateLimiter, limit int, window time.Duration, prefix string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := r.RemoteAddr

		key := fmt.Sprintf("ip:%s:%s", m.prefix, ip)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !allowed {
			audit.Log(r.Context(), audit.Event{
				Type: audit.EventRateLimitExceeded,
				IP:   ip,
			})
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secondsLeft))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// InstructorRateLimitMiddleware throttles instructor API calls per account,
// using each instructor's configured per-minute limit. It must run after
// InstructorAuthMiddleware.
type InstructorRateLimitMiddleware struct {
	limiter *service.RateLimiter
}

func NewInstructorRateLimitMiddleware(limiter *service.RateLimiter) *InstructorRateLimitMiddleware {
	return &InstructorRateLimitMiddleware{limiter: limiter}
}

func (m *InstructorRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		instructor := GetInstructor(r.Context())
		if instructor == nil {
			next.ServeHTTP(w, r)
			return
		}

		limit := instructor.RateLimitPerMin
		if limit <= 0 {
			limit = config.DefaultInstructorRateLimitPerMin
		}

		key := fmt.Sprintf("instructor:%s", instructor.ID)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, limit, time.Minute)

		if !allowed {
			log.Warn().Str("instructorId", instructor.ID).Msg("rate limit exceeded")
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secondsLeft))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
