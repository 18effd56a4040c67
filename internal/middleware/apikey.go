package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// HeaderAPIKey is the header clients authenticate with.
const HeaderAPIKey = "GuruCool-API-Key"

// RequireAPIKey rejects requests whose GuruCool-API-Key header does not
// match the configured key. An empty configured key disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" {
				got := r.Header.Get(HeaderAPIKey)
				if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]string{
							"code":    "UNAUTHORIZED",
							"message": "invalid or missing API key",
						},
						"correlationId": GetCorrelationID(r.Context()),
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
