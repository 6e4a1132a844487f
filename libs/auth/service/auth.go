package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the access token "role" claim
const (
	RoleUser    = 1
	RoleTutor   = 2
	RoleAdmin   = 3
	accessClaim = "access"
)

// TokenManager signs and validates HS256 access tokens shared with the identity service
type TokenManager struct {
	secret            string
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, accessExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken creates an access token with userID and role in payload
func (tm *TokenManager) GenerateAccessToken(userID string, role int) (string, error) {
	now := tm.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(tm.accessTokenExpiry).Unix(),
		"iat":     now.Unix(),
		"type":    accessClaim,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the userID and role
func (tm *TokenManager) ValidateAccessToken(tokenString string) (string, int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", 0, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != accessClaim {
		return "", 0, fmt.Errorf("token is not an access token")
	}

	// The identity service historically issued numeric ids
	var userID string
	switch v := claims["user_id"].(type) {
	case string:
		userID = v
	case float64:
		userID = fmt.Sprintf("%d", int64(v))
	default:
		return "", 0, fmt.Errorf("user_id not found in token")
	}

	// JWT claims decode numbers as float64
	role, ok := claims["role"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("role not found in token")
	}

	return userID, int(role), nil
}
