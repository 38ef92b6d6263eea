package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/arnavshah/rotation-api-go/internal/config"
	"github.com/arnavshah/rotation-api-go/pkg/auth"
	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/arnavshah/rotation-api-go/pkg/handlers"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load .env if it exists
	config.LoadEnv()
	cfg := config.Load()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" || cfg.MasterSecret == "" {
		log.Printf("warning: JWT_SECRET or API_MASTER_SECRET is empty, tokens and keys are not secure")
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	if err := auth.EnsureAdminExists(context.Background(), db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		log.Fatalf("could not create admin user: %v", err)
	}

	h := handlers.New(db, auth.New(cfg.JWTSecret, cfg.MasterSecret, cfg.TokenTTL), handlers.Options{
		Logger:       logger,
		MaxWeeks:     cfg.MaxWeeks,
		CacheEntries: cfg.CacheEntries,
	})
	r := handlers.NewRouter(h, gin.Logger(), gin.Recovery())

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
