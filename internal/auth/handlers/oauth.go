package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"planets-api/internal/auth"
	"planets-api/internal/auth/providers"
	"planets-api/internal/shared/cookies"
	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

type OAuthHandler struct {
	provider     providers.OAuthProvider
	sessions     *auth.Manager
	states       *auth.StateManager
	cookies      *cookies.Manager
	frontendURL  string
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, sessions *auth.Manager, states *auth.StateManager, cookieManager *cookies.Manager, frontendURL string, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		sessions:     sessions,
		states:       states,
		cookies:      cookieManager,
		frontendURL:  frontendURL,
		isConfigured: isConfigured,
	}
}

// HandleAuth initiates the OAuth flow by redirecting to the provider.
func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not properly configured", name)))
		return
	}

	state, err := h.states.GenerateState(name, r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	authURL := h.provider.GetAuthURL(state)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// HandleCallback processes the provider callback: exchange the code, fetch
// the user, open a server-side session, and hand the client its cookie.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"provider", name,
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		h.redirectWithError(w, r, "oauth_denied")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code", "provider", name)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	if err := h.states.ValidateState(state, name, r.UserAgent()); err != nil {
		logger.Warn("OAuth state validation failed", "error", err, "provider", name)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err, "provider", name)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	logger.Debug("Fetching user information from provider API", "provider", name)
	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err, "provider", name)
		h.redirectWithError(w, r, "oauth_error")
		return
	}

	identity := auth.Identity{
		Username:  userInfo.Username,
		Name:      userInfo.Name,
		AvatarURL: userInfo.AvatarURL,
		Provider:  name,
	}

	sessionToken, err := h.sessions.Create(ctx, identity)
	if err != nil {
		logger.Error("Failed to create session", "error", err, "username", identity.Username)
		h.redirectWithError(w, r, "session_error")
		return
	}

	h.cookies.SetSessionCookie(w, sessionToken)

	logger.Info("OAuth authentication successful",
		"provider", name,
		"username", identity.Username)

	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

// redirectWithError redirects to the frontend with error parameters
func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, errorType string) {
	errorURL := fmt.Sprintf("%s/auth/error?error=%s", h.frontendURL, errorType)
	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
