package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/types"
)

// Typed context keys for the resolved identity claims.
type contextKey string

const IdentityIDKey contextKey = "identityID"
const RoleKey contextKey = "role"

// Authenticate validates the bearer token on protected requests and attaches
// the resolved {identityID, role} to the request context. It trusts the token
// claims between issuance and expiry; there is no per-request identity fetch.
func Authenticate(logger *slog.Logger, issuer *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := issuer.Verify(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, IdentityIDKey, claims.IdentityID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to a single role partition. It assumes
// Authenticate already ran.
func RequireRole(role types.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := GetRoleFromContext(r.Context())
			if !ok || got != role {
				api.ErrorResponse(w, r, http.StatusForbidden, "Insufficient permissions for this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentityIDFromContext returns the authenticated identity id set by
// Authenticate.
func GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(IdentityIDKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetRoleFromContext returns the authenticated role set by Authenticate.
func GetRoleFromContext(ctx context.Context) (types.Role, bool) {
	raw, ok := ctx.Value(RoleKey).(string)
	if !ok {
		return "", false
	}
	return types.ParseRole(raw)
}
