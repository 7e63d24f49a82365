package middleware

import (
	"net/http"
	"strings"

	"github.com/i20tominaga/resident-app/internal/auth"
	"github.com/i20tominaga/resident-app/internal/building"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// writeAuthError emits the standard error envelope without importing the api
// package (which would create an import cycle).
func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	SetErrorCode(r.Context(), code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

// Authenticate validates the Authorization bearer token and stores the user
// ID and role in the request context. Requests without a valid token get 401.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, r, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, r, http.StatusUnauthorized, "unauthorized", "Authorization header must be a bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				code := "invalid_token"
				if err == auth.ErrExpiredToken {
					code = "token_expired"
				}
				writeAuthError(w, r, http.StatusUnauthorized, code, "Invalid or expired token")
				return
			}

			ctx := SetUserID(r.Context(), claims.Subject)
			ctx = SetUserRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects requests whose authenticated role is not staff.
// Must run after Authenticate.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserRole(r.Context()) != string(building.RoleStaff) {
			writeAuthError(w, r, http.StatusForbidden, "forbidden", "Staff role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
