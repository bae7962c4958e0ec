package middleware

import (
	"net/http"
)

// RoleMiddleware validates JWT access token and checks if user's role is >= requiredRole
func RoleMiddleware(validator TokenValidator, requiredRole int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, `{"error":"authentication required"}`)
				return
			}

			userID, role, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)
				return
			}

			if role < requiredRole {
				writeError(w, http.StatusForbidden, `{"error":"insufficient permissions"}`)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, role)))
		})
	}
}
