package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/rotation-api-go/pkg/auth"
	"github.com/arnavshah/rotation-api-go/pkg/cache"
	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/arnavshah/rotation-api-go/pkg/metrics"
	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/random"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Auth      *auth.Authenticator
	Rotations *database.RotationRepository
	Cache     *cache.Cache[models.ScheduleResponse]
	Metrics   *metrics.Recorder
	Logger    *slog.Logger

	// MaxWeeks caps how many weeks a single request may generate
	MaxWeeks int
}

// Options tune a Handler
type Options struct {
	Logger       *slog.Logger
	MaxWeeks     int
	CacheEntries int
}

// New wires a Handler around an open database
func New(db *gorm.DB, authn *auth.Authenticator, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxWeeks <= 0 {
		opts.MaxWeeks = 520
	}
	return &Handler{
		DB:        db,
		Auth:      authn,
		Rotations: database.NewRotationRepository(db),
		Cache:     cache.New[models.ScheduleResponse](opts.CacheEntries),
		Metrics:   metrics.New(),
		Logger:    opts.Logger,
		MaxWeeks:  opts.MaxWeeks,
	}
}

// bearer strips an optional "Bearer " prefix from the Authorization header
func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for scheduler routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		userID, err := h.Auth.VerifyKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Fetch or create API key record to track usage
		apiKey, err := auth.TouchAPIKey(c.Request.Context(), h.DB, key, userID)
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// MetricsMiddleware counts every request by route and status
func (h *Handler) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.Metrics.ObserveRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}

func currentKey(c *gin.Context) *database.APIKey {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil
	}
	apiKey, _ := raw.(*database.APIKey)
	return apiKey
}

// errorStatus maps a domain error to its HTTP status
func errorStatus(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrInvalidInput), errors.Is(err, random.ErrInvalidDistribution):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidKey), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the status matching err. Internal errors are logged and
// not echoed back.
func (h *Handler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
