package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/rotation-api-go/internal/config"
	"github.com/arnavshah/rotation-api-go/pkg/auth"
)

func main() {
	config.LoadEnv()

	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	userID := os.Args[1]
	cfg := config.Load()
	if cfg.MasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	apiKey := auth.New(cfg.JWTSecret, cfg.MasterSecret, cfg.TokenTTL).GenerateKey(userID)
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
}
