package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidToken is returned for expired, malformed or forged admin tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidKey is returned for API keys whose signature does not match
	ErrInvalidKey = errors.New("invalid api key")

	// ErrInvalidCredentials is returned by Login for unknown users or wrong passwords
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator signs admin sessions and API keys
type Authenticator struct {
	jwtSecret    []byte
	masterSecret []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func New(jwtSecret, masterSecret string, tokenTTL time.Duration) *Authenticator {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Authenticator{
		jwtSecret:    []byte(jwtSecret),
		masterSecret: []byte(masterSecret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (a *Authenticator) CreateToken(username string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken verifies a JWT token
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateKey creates a signed API key using HMAC-SHA256
func (a *Authenticator) GenerateKey(userID string) string {
	return userID + "." + a.sign(userID)
}

// VerifyKey validates an HMAC-signed API key and returns its user id
func (a *Authenticator) VerifyKey(key string) (string, error) {
	userID, signature, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(signature, ".") {
		return "", fmt.Errorf("%w: malformed key", ErrInvalidKey)
	}

	// constant-time comparison
	if !hmac.Equal([]byte(signature), []byte(a.sign(userID))) {
		return "", fmt.Errorf("%w: bad signature", ErrInvalidKey)
	}

	return userID, nil
}

func (a *Authenticator) sign(userID string) string {
	h := hmac.New(sha256.New, a.masterSecret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyPreview shortens a key for listings, e.g. "hou...9f3a"
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// EnsureAdminExists creates the admin user when there is none yet
func EnsureAdminExists(ctx context.Context, db *gorm.DB, username, password string, logger *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := database.MasterUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}
	if logger != nil {
		logger.Info("default admin user created", "username", username)
	}
	return nil
}

// Login checks the credentials of an admin and returns a fresh token
func (a *Authenticator) Login(ctx context.Context, db *gorm.DB, username, password string) (string, error) {
	var user database.MasterUser
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return a.CreateToken(user.Username)
}

// TouchAPIKey fetches or creates the usage record of key and stamps LastUsed
func TouchAPIKey(ctx context.Context, db *gorm.DB, key, userID string) (*database.APIKey, error) {
	var apiKey database.APIKey
	err := db.WithContext(ctx).
		Where(database.APIKey{Key: key}).
		Attrs(database.APIKey{Name: userID, KeyPreview: KeyPreview(key), RateLimit: 10000}).
		FirstOrCreate(&apiKey).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	apiKey.LastUsed = &now
	if err := db.WithContext(ctx).Model(&apiKey).Update("last_used", now).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}
