package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"planets-api/internal/shared/database"
	"planets-api/internal/shared/redis"
	"planets-api/internal/shared/response"
)

type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Database     string `json:"database"`
	SessionStore string `json:"session_store"`
}

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	dbStatus := "disconnected"
	if h.db != nil {
		if err := h.db.Ping(); err == nil {
			dbStatus = "connected"
		} else {
			logger.Warn("Database ping failed", "error", err)
		}
	}

	sessionStore := "memory"
	if h.redis != nil {
		sessionStore = "disconnected"
		if err := h.redis.Ping(r.Context()).Err(); err == nil {
			sessionStore = "redis"
		} else {
			logger.Warn("Redis ping failed", "error", err)
		}
	}

	resp := HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().Format(time.RFC3339),
		Database:     dbStatus,
		SessionStore: sessionStore,
	}

	response.Success(w, http.StatusOK, resp)
}
