package server

import (
	"log/slog"
	"net/http"

	"planets-api/internal/auth"
	authHandlers "planets-api/internal/auth/handlers"
	"planets-api/internal/auth/providers"
	"planets-api/internal/middleware"
	"planets-api/internal/planet"
	planetHandlers "planets-api/internal/planet/handlers"
	"planets-api/internal/schema"
	serverHandlers "planets-api/internal/server/handlers"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/cookies"
	"planets-api/internal/shared/database"
	"planets-api/internal/shared/redis"
	"planets-api/internal/shared/response"
	"planets-api/internal/upload"
)

type Routes struct {
	cfg           *config.Config
	db            *database.DB
	redis         *redis.Client
	planetService *planet.Service
	sessions      *auth.Manager
	states        *auth.StateManager
	cookies       *cookies.Manager
	guard         *upload.Guard
	logger        *slog.Logger
}

func NewRoutes(cfg *config.Config, db *database.DB, redisClient *redis.Client, planetService *planet.Service, sessions *auth.Manager, states *auth.StateManager, cookieManager *cookies.Manager, guard *upload.Guard, logger *slog.Logger) *Routes {
	return &Routes{
		cfg:           cfg,
		db:            db,
		redis:         redisClient,
		planetService: planetService,
		sessions:      sessions,
		states:        states,
		cookies:       cookieManager,
		guard:         guard,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	planetHandler := planetHandlers.NewPlanetHandler(r.planetService, schema.Planet())
	photoHandler := planetHandlers.NewPhotoHandler(r.planetService, r.guard)
	photoFileHandler := serverHandlers.NewPhotoFileHandler(r.guard.Dir())
	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis)
	logoutHandler := authHandlers.NewLogoutHandler(r.sessions, r.cookies)

	githubAuthHandler := authHandlers.NewOAuthHandler(
		providers.NewGitHubProvider(r.cfg),
		r.sessions,
		r.states,
		r.cookies,
		r.cfg.Frontend.URL,
		r.cfg.GitHubOAuthConfigured(),
	)

	// Public planet endpoints
	mux.HandleFunc("GET /planets", planetHandler.List)
	mux.Handle("GET /planets/photo/{filename}", photoFileHandler)
	mux.Handle("GET /planets/{id}", middleware.RequireNumericID(http.HandlerFunc(planetHandler.Get)))

	// Protected planet endpoints. The numeric-id gate sits outside the auth
	// gate so a non-numeric segment behaves like an unmatched route.
	mux.Handle("POST /planets", middleware.RequireAuth(http.HandlerFunc(planetHandler.Create)))
	mux.Handle("PUT /planets/{id}",
		middleware.RequireNumericID(middleware.RequireAuth(http.HandlerFunc(planetHandler.Update))))
	mux.Handle("DELETE /planets/{id}",
		middleware.RequireNumericID(middleware.RequireAuth(http.HandlerFunc(planetHandler.Delete))))
	mux.Handle("POST /planets/{id}/photo",
		middleware.RequireNumericID(middleware.RequireAuth(http.HandlerFunc(photoHandler.Attach))))

	// OAuth endpoints
	mux.HandleFunc("/auth/github", githubAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/github/callback", githubAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", logoutHandler)

	// Server endpoints
	mux.Handle("/api/health", healthHandler)

	// Everything else: the generic 404 naming the method and path
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		response.RouteNotFound(w, req.Method, req.URL.Path)
	})

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"GET /planets", "GET /planets/{id}", "GET /planets/photo/{filename}", "/api/health"},
		"protected_endpoints", []string{"POST /planets", "PUT /planets/{id}", "DELETE /planets/{id}", "POST /planets/{id}/photo"},
		"auth_endpoints", []string{"/auth/github", "/auth/github/callback", "/auth/logout"},
	)

	return mux
}

// Handler wraps the route mux with the cross-cutting middleware: the session
// attach runs outermost, then CORS, then dispatch.
func (r *Routes) Handler() http.Handler {
	sessionMiddleware := middleware.NewSessionMiddleware(r.sessions, r.cookies)
	corsMiddleware := middleware.NewCORS(r.cfg)

	return sessionMiddleware.Middleware(corsMiddleware.Middleware(r.Setup()))
}
