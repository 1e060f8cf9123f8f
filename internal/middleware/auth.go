// Package middleware carries the HTTP authentication layer. Handlers behind
// it can read the caller's identity and role from the request context.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"slicecraft/internal/apperr"
	"slicecraft/internal/repositories"
	"slicecraft/internal/token"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "user_role"
)

type Auth struct {
	tokens   *token.Manager
	userRepo repositories.UserRepositoryInterface
	logger   *logger.Logger
}

func NewAuth(tokens *token.Manager, userRepo repositories.UserRepositoryInterface, log *logger.Logger) *Auth {
	return &Auth{
		tokens:   tokens,
		userRepo: userRepo,
		logger:   log.WithComponent("auth-middleware"),
	}
}

// RequireAuth rejects requests without a valid bearer token. The account is
// re-checked against the database so tokens of deleted users stop working.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			a.deny(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		claims, err := a.tokens.Parse(raw)
		if err != nil {
			a.logger.Warn("Token rejected", "path", r.URL.Path, "error", err.Error())
			a.deny(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := a.userRepo.GetByID(claims.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				a.deny(w, http.StatusUnauthorized, "account no longer exists")
				return
			}
			a.logger.Error("Failed to load account for token", "user_id", claims.UserID, "error", err.Error())
			a.deny(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		ctx = context.WithValue(ctx, userRoleKey, user.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers that are not admins. It must be
// chained after RequireAuth.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != models.RoleAdmin {
			a.deny(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the x-auth-token header older clients send.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return after
		}
	}
	return r.Header.Get("x-auth-token")
}

// UserIDFromContext returns the authenticated account id, or "" when the
// request did not pass RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RoleFromContext returns the authenticated account role.
func RoleFromContext(ctx context.Context) models.Role {
	role, _ := ctx.Value(userRoleKey).(models.Role)
	return role
}
