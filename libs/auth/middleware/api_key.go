package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware validates the X-API-Key header against the configured key.
// An unset key rejects every request.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-API-Key")
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				writeAuthError(w, http.StatusUnauthorized, `{"error":"invalid or missing API key"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
