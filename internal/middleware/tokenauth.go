// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/RecipeVault/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenResolver resolves an opaque token key to its owning user.
type TokenResolver interface {
	// ResolveToken returns the user owning the token key, or an error
	// if the key is unknown or the account is inactive.
	ResolveToken(ctx context.Context, key string) (*models.User, error)
}

// TokenAuth is a middleware that enforces bearer-token authentication.
//
// It reads the Authorization header, accepting either "Token <key>" or
// "Bearer <key>", resolves the key to a user, and stores the user in the
// request context so handlers can use it as the authenticated identity.
// Requests without a resolvable token are rejected with 401.
func TokenAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			user, err := resolver.ResolveToken(r.Context(), key)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// tokenFromHeader extracts the token key from an Authorization header value.
func tokenFromHeader(header string) (string, bool) {
	scheme, key, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user was attached.
func UserFromContext(ctx context.Context) *models.User {
	val := ctx.Value(userKey)
	if u, ok := val.(*models.User); ok {
		return u
	}
	return nil
}
