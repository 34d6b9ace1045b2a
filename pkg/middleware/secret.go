package middleware

import (
	"crypto/subtle"
	"net/http"
	"salonbook/pkg/logger"
)

const CronSecretHeader = "X-Cron-Secret"

// SharedSecret guards internally triggered endpoints (the reminder cron)
// with a constant-time comparison against a pre-shared secret header.
// GET requests pass through so the endpoint stays probeable.
func SharedSecret(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(CronSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				log.Warn("Rejected trigger with invalid shared secret",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
