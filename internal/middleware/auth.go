package middleware

import (
	"log/slog"
	"net/http"

	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

// RequireAuth short-circuits requests that carry no authenticated identity.
// It wraps every mutating planet route and no read route.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "auth",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		identity := IdentityFromContext(r)
		if identity == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		logger.Debug("Request authenticated", "username", identity.Username)
		next.ServeHTTP(w, r)
	})
}
