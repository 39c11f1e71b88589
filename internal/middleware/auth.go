package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const KeyNameKey contextKey = "api_key_name"

// APIKeyAuth validates the API key from the Authorization or X-API-Key
// header against validKeys (name -> key). An empty map disables auth.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				// Support both "Bearer <key>" and "<key>" formats
				apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			apiKey = strings.TrimSpace(apiKey)
			if apiKey == "" {
				http.Error(w, "missing API key", http.StatusUnauthorized)
				return
			}

			// constant-time comparison, no early exit on match
			var name string
			for n, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					name = n
				}
			}
			if name == "" {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), KeyNameKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// KeyNameFromContext returns the name of the authenticated key, if any.
func KeyNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(KeyNameKey).(string); ok {
		return name
	}
	return ""
}
