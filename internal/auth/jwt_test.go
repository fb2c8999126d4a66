package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.GenerateAccessToken("user-1", "dana@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTManager_Validate_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateAccessToken("user-1", "dana@example.com", "user")
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse access token")
}

func TestJWTManager_Validate_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := manager.GenerateAccessToken("user-1", "dana@example.com", "user")
	require.NoError(t, err)

	claims, err := other.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWTManager_Validate_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	claims, err := manager.ValidateAccessToken("not-a-token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWTManager_ValidateToken_MiddlewareAdapter(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.GenerateAccessToken("user-2", "sam@example.com", "admin")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}
