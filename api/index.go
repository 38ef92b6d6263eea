package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/arnavshah/rotation-api-go/internal/config"
	"github.com/arnavshah/rotation-api-go/pkg/auth"
	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/arnavshah/rotation-api-go/pkg/handlers"
	"github.com/gin-gonic/gin"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadEnv()
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	if err := auth.EnsureAdminExists(context.Background(), db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		log.Printf("could not create admin user: %v", err)
	}

	h := handlers.New(db, auth.New(cfg.JWTSecret, cfg.MasterSecret, cfg.TokenTTL), handlers.Options{
		Logger:       logger,
		MaxWeeks:     cfg.MaxWeeks,
		CacheEntries: cfg.CacheEntries,
	})

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(h, gin.Logger(), gin.Recovery())
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
