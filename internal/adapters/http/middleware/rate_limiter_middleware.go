// Package middleware provides the application's HTTP middlewares.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/ports"
)

const rateLimitExceededMessage = "you have reached the maximum number of requests or actions allowed within a certain time frame"

// NewRateLimiterMiddleware enforces limitType for every request, using the
// API_KEY header as the subject when present and the client IP otherwise.
// The core leaves the safety posture to its caller; this middleware fails
// closed: a store failure refuses the request with 503 instead of
// admitting it on an unknown count.
func NewRateLimiterMiddleware(limiter ports.RateLimiter, limitType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			subject := strings.TrimSpace(r.Header.Get("API_KEY"))
			if subject == "" {
				subject = extractIP(r)
			}

			allowed, err := limiter.Allowed(r.Context(), subject, limitType)
			if err != nil {
				if domain.IsStoreUnavailableError(err) {
					slog.Error("counter store unavailable", "error", err)
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}

				slog.Error("rate limiter failed", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if !allowed {
				writeTooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" {
		return xRealIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(rateLimitExceededMessage))
}
