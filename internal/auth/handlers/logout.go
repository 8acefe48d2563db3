package handlers

import (
	"log/slog"
	"net/http"

	"planets-api/internal/auth"
	"planets-api/internal/shared/cookies"
)

type LogoutHandler struct {
	sessions *auth.Manager
	cookies  *cookies.Manager
}

func NewLogoutHandler(sessions *auth.Manager, cookieManager *cookies.Manager) *LogoutHandler {
	return &LogoutHandler{
		sessions: sessions,
		cookies:  cookieManager,
	}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "logout", "remote_addr", r.RemoteAddr)
	logger.Debug("Logout requested")

	if cookie, err := r.Cookie(h.cookies.Name()); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			logger.Error("Failed to destroy session", "error", err)
		}
	}

	h.cookies.ClearSessionCookie(w)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Logged out")); err != nil {
		logger.Error("Failed to write logout response", "error", err)
		return
	}

	logger.Info("User logged out successfully")
}
