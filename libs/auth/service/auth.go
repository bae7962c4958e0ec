package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles carried in access tokens. Higher values include the permissions of lower ones.
const (
	RoleLearner = 1
	RoleAdmin   = 2
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry, refreshExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// RefreshTokenExpiry returns the configured refresh token lifetime
func (tg *TokenGenerator) RefreshTokenExpiry() time.Duration {
	return tg.refreshTokenExpiry
}

// GenerateTokens generates an access token carrying the user and role,
// and an opaque refresh token identified only by a random jti
func (tg *TokenGenerator) GenerateTokens(userID string, role int) (string, string, error) {
	accessToken, err := tg.sign(jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(tg.accessTokenExpiry).Unix(),
		"iat":     time.Now().Unix(),
		"type":    tokenTypeAccess,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := tg.sign(jwt.MapClaims{
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(tg.refreshTokenExpiry).Unix(),
		"iat":  time.Now().Unix(),
		"type": tokenTypeRefresh,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (tg *TokenGenerator) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the userID and role
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (string, int, error) {
	claims, err := tg.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return "", 0, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", 0, fmt.Errorf("user_id not found in token")
	}

	// JWT claims decode numbers as float64
	role, ok := claims["role"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("role not found in token")
	}

	return userID, int(role), nil
}

// ValidateRefreshToken validates a refresh token
func (tg *TokenGenerator) ValidateRefreshToken(tokenString string) error {
	_, err := tg.parse(tokenString, tokenTypeRefresh)
	return err
}

func (tg *TokenGenerator) parse(tokenString, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != expectedType {
		return nil, fmt.Errorf("token type mismatch: expected %s", expectedType)
	}

	return claims, nil
}
