package middleware

import (
	"context"
	"net/http"

	"github.com/studymate/backend/libs/auth/service"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (string, int, error)
}

var _ TokenValidator = (*service.TokenManager)(nil)

// RoleMiddleware validates JWT access token and checks if user's role is >= requiredRole
func RoleMiddleware(validator TokenValidator, requiredRole int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, `{"error":"authentication required"}`)
				return
			}

			userID, role, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)
				return
			}

			if role < requiredRole {
				writeAuthError(w, http.StatusForbidden, `{"error":"insufficient permissions"}`)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
