package middleware

import (
	"log/slog"
	"net/http"

	"planets-api/internal/shared/config"

	"github.com/rs/cors"
)

type CORSMiddleware struct {
	*cors.Cors
	origin string
}

func NewCORS(cfg *config.Config) *CORSMiddleware {
	logger := slog.With("component", "cors", "operation", "setup")
	logger.Debug("Setting up CORS middleware")

	allowedOrigins := []string{cfg.Frontend.URL}

	corsConfig := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		Debug:            cfg.Frontend.CORSDebug,
	})

	logger.Info("CORS middleware configured",
		"allowed_origins", allowedOrigins,
		"allow_credentials", true,
		"debug_mode", cfg.Frontend.CORSDebug,
	)

	return &CORSMiddleware{corsConfig, cfg.Frontend.URL}
}

// Middleware wraps h with CORS handling. The configured origin header goes on
// every response, Origin header or not; clients without a browser context
// still see it. The rs/cors handler then owns preflight and credentials
// negotiation.
func (c *CORSMiddleware) Middleware(h http.Handler) http.Handler {
	inner := c.Cors.Handler(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", c.origin)
		inner.ServeHTTP(w, r)
	})
}
