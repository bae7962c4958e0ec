package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "b8a3c2267dc85f855dea9b46b452bf20"

func TestNewTokenGenerator(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key", time.Hour, 7*24*time.Hour)

	require.NotNil(t, tg)
	assert.Equal(t, "test-secret-key", tg.secret)
	assert.Equal(t, time.Hour, tg.accessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, tg.RefreshTokenExpiry())
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, 7*24*time.Hour)
	userID := "5b0c3a52-4f5e-4d2a-9c61-2f1d1c8f7e10"

	accessToken, refreshToken, err := tg.GenerateTokens(userID, RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	gotID, gotRole, err := tg.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, RoleAdmin, gotRole)

	assert.NoError(t, tg.ValidateRefreshToken(refreshToken))

	t.Run("refresh tokens are unique within the same second", func(t *testing.T) {
		_, first, err := tg.GenerateTokens(userID, RoleLearner)
		require.NoError(t, err)
		_, second, err := tg.GenerateTokens(userID, RoleLearner)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("refresh token carries no user", func(t *testing.T) {
		parsed, _, err := jwt.NewParser().ParseUnverified(refreshToken, jwt.MapClaims{})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.NotContains(t, claims, "user_id")
		assert.Contains(t, claims, "jti")
	})
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)

	sign := func(claims jwt.MapClaims, secret string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name          string
		token         string
		errorContains string
	}{
		{
			name:          "malformed",
			token:         "not-a-token",
			errorContains: "failed to parse token",
		},
		{
			name:          "wrong secret",
			token:         sign(jwt.MapClaims{"user_id": "u", "role": 1, "type": "access", "exp": future}, "other"),
			errorContains: "failed to parse token",
		},
		{
			name:          "expired",
			token:         sign(jwt.MapClaims{"user_id": "u", "role": 1, "type": "access", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret),
			errorContains: "failed to parse token",
		},
		{
			name:          "refresh token used as access",
			token:         sign(jwt.MapClaims{"type": "refresh", "exp": future}, testSecret),
			errorContains: "expected access",
		},
		{
			name:          "numeric user id",
			token:         sign(jwt.MapClaims{"user_id": 12, "role": 1, "type": "access", "exp": future}, testSecret),
			errorContains: "user_id not found",
		},
		{
			name:          "missing role",
			token:         sign(jwt.MapClaims{"user_id": "u", "type": "access", "exp": future}, testSecret),
			errorContains: "role not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, role, err := tg.ValidateAccessToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Empty(t, userID)
			assert.Zero(t, role)
		})
	}
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)
	accessToken, _, err := tg.GenerateTokens("u-1", RoleLearner)
	require.NoError(t, err)

	err = tg.ValidateRefreshToken(accessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected refresh")
}
