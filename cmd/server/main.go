package main

import (
	"log"
	"log/slog"
	"net/http"

	"planets-api/internal/auth"
	"planets-api/internal/planet"
	"planets-api/internal/server"
	"planets-api/internal/shared/config"
	"planets-api/internal/shared/cookies"
	"planets-api/internal/shared/database"
	"planets-api/internal/shared/logger"
	"planets-api/internal/shared/redis"
	"planets-api/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger.Init(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	redisClient, err := redis.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}()

	var sessionStore auth.Store
	if redisClient != nil {
		sessionStore = auth.NewRedisStore(redisClient, cfg.Session.TTL)
	} else {
		sessionStore = auth.NewMemoryStore()
	}

	signer := auth.NewTokenSigner(cfg.Session.Secret, cfg.Session.TTL)
	sessions := auth.NewManager(sessionStore, signer, cfg.Session.TTL, slog.Default())
	states := auth.NewStateManager()
	cookieManager := cookies.NewManager(cfg)
	guard := upload.NewGuard(cfg, slog.Default())

	planetRepo := planet.NewPostgresRepository(db, slog.Default())
	planetService := planet.NewService(planetRepo, slog.Default())

	slog.Info("Services initialized")

	routes := server.NewRoutes(cfg, db, redisClient, planetService, sessions, states, cookieManager, guard, slog.Default())

	srv := &http.Server{
		Addr:         ":" + cfg.ListenPort(),
		Handler:      routes.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	slog.Info("Planets API server starting",
		"port", cfg.ListenPort(),
		"environment", cfg.Server.Environment,
	)

	log.Fatal(srv.ListenAndServe())
}
