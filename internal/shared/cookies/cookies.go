package cookies

import (
	"net/http"
	"net/url"
	"strings"

	"planets-api/internal/shared/config"
)

// Manager builds the session cookie from configuration. It is constructed
// once at assembly and shared by the auth handlers and middleware.
type Manager struct {
	cfg *config.Config
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

func (m *Manager) Name() string {
	return m.cfg.Session.CookieName
}

func (m *Manager) SetSessionCookie(w http.ResponseWriter, token string) {
	cookie := m.createSessionCookie()
	cookie.Value = token
	cookie.MaxAge = int(m.cfg.Session.TTL.Seconds())

	http.SetCookie(w, cookie)
}

func (m *Manager) ClearSessionCookie(w http.ResponseWriter) {
	cookie := m.createSessionCookie()
	cookie.Value = ""
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)
}

func (m *Manager) createSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.Session.CookieName,
		Path:     "/",
		Domain:   extractDomain(m.cfg.Frontend.URL),
		HttpOnly: true,
		Secure:   m.cfg.Session.CookieSecure,
		SameSite: parseSameSite(m.cfg.Session.CookieSameSite),
	}
}

func extractDomain(frontendURL string) string {
	parsedURL, err := url.Parse(frontendURL)
	if err != nil || parsedURL.Host == "" {
		return ""
	}

	host := strings.Split(parsedURL.Host, ":")[0]
	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	return host
}

func parseSameSite(sameSiteStr string) http.SameSite {
	switch sameSiteStr {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
