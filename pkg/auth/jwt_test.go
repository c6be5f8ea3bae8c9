package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:             "access-secret",
		RefreshSecret:      "refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := NewJWTService(testConfig())
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "amy@example.com", "veterinarian")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "amy@example.com", claims.Email)
	assert.Equal(t, "veterinarian", claims.Role)
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	svc := NewJWTService(testConfig())
	userID := uuid.New()

	refresh, err := svc.GenerateRefreshToken(userID, "amy@example.com", "veterinarian")
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := NewJWTService(testConfig())

	token, err := svc.GenerateAccessToken(uuid.New(), "amy@example.com", "groomer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	cfg := testConfig()
	cfg.ExpiryHours = -1
	svc := NewJWTService(cfg)

	token, err := svc.GenerateAccessToken(uuid.New(), "amy@example.com", "groomer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
