package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	// OwnerIDKey carries the authenticated user's id through the request
	// context. Everything below the middleware only ever sees this id.
	OwnerIDKey contextKey = "owner_id"
)

// TokenResolver maps a bearer token to an owner id. Implemented by the
// session store.
type TokenResolver interface {
	Resolve(token string) (int64, bool)
}

// SessionAuth validates the bearer token from the Authorization header and
// puts the resolved owner id on the context.
func SessionAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Accept both "Bearer <token>" and a bare token.
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			ownerID, ok := resolver.Resolve(token)
			if !ok {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext extracts the authenticated owner id; zero when absent.
func OwnerFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(OwnerIDKey).(int64); ok {
		return id
	}
	return 0
}
