package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/ports"
)

// TokenCookieName is the cookie carrying the signed session token.
const TokenCookieName = "token"

// identityKey is the context key for the resolved caller identity.
type identityKey struct{}

// WithIdentity returns a new context carrying the resolved caller identity.
// Exported for handler tests, which need to simulate an authenticated request
// without running the full middleware chain.
func WithIdentity(ctx context.Context, id *ports.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the caller identity attached by Authenticate.
// ok is false when the request never passed authentication.
func IdentityFromContext(ctx context.Context) (*ports.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*ports.Identity)
	return id, ok
}

// Authenticate returns middleware that resolves the caller from the token
// cookie (or an Authorization bearer header) and attaches the identity to
// the request context. Requests without a valid, unrevoked session are
// rejected with 401 before reaching any handler; protected operations never
// execute without an owner.
func Authenticate(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				dto.WriteErrorResponse(w, r, domain.ErrUnauthenticated)
				return
			}

			identity, err := auth.Resolve(r.Context(), token)
			if err != nil {
				dto.WriteErrorResponse(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest prefers the cookie and falls back to a bearer header for
// non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
