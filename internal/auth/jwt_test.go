package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carsource_backend/internal/models"
)

func TestGenerateAndParseToken(t *testing.T) {
	Init("test-secret", time.Hour)

	token, err := GenerateToken("user-1", models.UserRoleAdvisor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.UserRoleAdvisor, claims.Role)
}

func TestParseTokenExpired(t *testing.T) {
	Init("test-secret", -time.Minute)

	token, err := GenerateToken("user-1", models.UserRoleCustomer)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	Init("secret-a", time.Hour)
	token, err := GenerateToken("user-1", models.UserRoleCustomer)
	require.NoError(t, err)

	Init("secret-b", time.Hour)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	Init("test-secret", time.Hour)

	_, err := ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
