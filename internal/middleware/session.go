package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"planets-api/internal/auth"
	"planets-api/internal/shared/cookies"
)

type contextKey string

const identityContextKey contextKey = "identity"

// SessionMiddleware resolves the session cookie on every request and, when a
// live session exists, attaches the identity to the request context. It
// never rejects a request; RequireAuth does the gating.
type SessionMiddleware struct {
	sessions *auth.Manager
	cookies  *cookies.Manager
}

func NewSessionMiddleware(sessions *auth.Manager, cookieManager *cookies.Manager) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		cookies:  cookieManager,
	}
}

func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookies.Name())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			logger := slog.With(
				"middleware", "session",
				"method", r.Method,
				"path", r.URL.Path,
			)
			logger.Error("Session lookup failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if identity == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the authenticated identity attached to the
// request, or nil when the request carries no live session.
func IdentityFromContext(r *http.Request) *auth.Identity {
	if identity, ok := r.Context().Value(identityContextKey).(*auth.Identity); ok {
		return identity
	}
	return nil
}
