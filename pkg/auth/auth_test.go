package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("", filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	return db
}

func TestToken_RoundTrip(t *testing.T) {
	a := New("jwt-secret", "master", time.Hour)

	token, err := a.CreateToken("admin")
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestToken_Rejected(t *testing.T) {
	a := New("jwt-secret", "master", time.Hour)
	token, err := a.CreateToken("admin")
	require.NoError(t, err)

	_, err = New("other-secret", "master", time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := New("jwt-secret", "master", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.CreateToken("admin")
	require.NoError(t, err)
	_, err = a.VerifyToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestKey_RoundTrip(t *testing.T) {
	a := New("jwt-secret", "master", 0)

	key := a.GenerateKey("house-42")
	userID, err := a.VerifyKey(key)

	require.NoError(t, err)
	assert.Equal(t, "house-42", userID)
}

func TestKey_Rejected(t *testing.T) {
	a := New("jwt-secret", "master", 0)
	key := a.GenerateKey("house-42")

	tests := map[string]string{
		"other secret": New("jwt-secret", "other", 0).GenerateKey("house-42"),
		"tampered id":  "house-43" + key[len("house-42"):],
		"no dot":       "house42",
		"empty id":     "." + key[len("house-42."):],
		"extra part":   key + ".x",
	}
	for name, k := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.VerifyKey(k)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestKeyPreview(t *testing.T) {
	assert.Equal(t, "****", KeyPreview("short"))
	assert.Equal(t, "hou...cdef", KeyPreview("house.0123456789abcdef"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestEnsureAdminExistsAndLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := New("jwt-secret", "master", time.Hour)

	require.NoError(t, EnsureAdminExists(ctx, db, "admin", "admin123", nil))
	require.NoError(t, EnsureAdminExists(ctx, db, "other", "pw", nil))

	var count int64
	db.Model(&database.MasterUser{}).Count(&count)
	assert.EqualValues(t, 1, count, "only the first call creates a user")

	token, err := a.Login(ctx, db, "admin", "admin123")
	require.NoError(t, err)
	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = a.Login(ctx, db, "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, db, "other", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTouchAPIKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	key := New("", "master", 0).GenerateKey("house")

	first, err := TouchAPIKey(ctx, db, key, "house")
	require.NoError(t, err)
	require.NotNil(t, first.LastUsed)
	assert.Equal(t, "house", first.Name)
	assert.Equal(t, KeyPreview(key), first.KeyPreview)

	second, err := TouchAPIKey(ctx, db, key, "house")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTouchAPIKey_KeepsCustomSettings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	key := New("", "master", 0).GenerateKey("flat-3")

	require.NoError(t, db.Create(&database.APIKey{Key: key, Name: "Flat 3", KeyPreview: KeyPreview(key), RateLimit: 50}).Error)

	got, err := TouchAPIKey(ctx, db, key, "flat-3")
	require.NoError(t, err)
	assert.Equal(t, "Flat 3", got.Name)
	assert.Equal(t, 50, got.RateLimit)
	require.NotNil(t, got.LastUsed)

	var count int64
	require.NoError(t, db.Model(&database.APIKey{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
