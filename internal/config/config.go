package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings of the binaries
type Config struct {
	Port          string
	DatabaseURL   string
	DataPath      string
	JWTSecret     string
	MasterSecret  string
	AdminUsername string
	AdminPassword string
	GinMode       string
	LogLevel      string
	SlackBotToken string
	CacheEntries  int
	MaxWeeks      int
	TokenTTL      time.Duration
}

// envPaths are tried in order, the first existing file wins
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads the first .env file found in the working directory or its parents
func LoadEnv() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8000"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DataPath:      getEnv("DATA_PATH", "rotations.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		MasterSecret:  getEnv("API_MASTER_SECRET", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		GinMode:       getEnv("GIN_MODE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SlackBotToken: getEnv("SLACK_BOT_TOKEN", ""),
		CacheEntries:  getEnvInt("CACHE_ENTRIES", 1024, 0),
		MaxWeeks:      getEnvInt("MAX_WEEKS", 520, 1),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),
	}
}

// NewLogger builds a text slog logger writing to stderr at the given level
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when key is unset, malformed or below minimum
func getEnvInt(key string, defaultValue, minimum int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < minimum {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
