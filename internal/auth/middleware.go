package auth

import (
	"context"
	"net/http"

	"ms-orders/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Middleware verifies the bearer token on every request and places the
// caller's (user_id, role) pair into the request context. Requests without a
// valid token are rejected before reaching any handler.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			caller, err := ParseCaller(rawToken, secret)
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, caller.UserID)
			ctx = context.WithValue(ctx, roleKey, caller.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the caller's user id from the request context.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// Role extracts the caller's role from the request context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// CanMutateFinancials is the single source of truth for the role-gated
// fields rule: only admins may touch total_price, advance_percentage and
// advance_paid.
func CanMutateFinancials(role string) bool {
	return role == models.RoleAdmin
}
