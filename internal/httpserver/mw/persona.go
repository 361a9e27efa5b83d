package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
)

// Headers set by the upstream auth gateway.
const (
	HeaderUserID  = "X-User-ID"
	HeaderPersona = "X-Persona"
)

type scopeKey struct{}

// Persona reads the (user, persona) pair forwarded by the auth gateway and
// rejects the request with 401 when either half is missing.
func Persona(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := domain.Scope{
			UserID:  strings.TrimSpace(r.Header.Get(HeaderUserID)),
			Persona: strings.TrimSpace(r.Header.Get(HeaderPersona)),
		}
		if scope.IsZero() {
			writeError(w, http.StatusUnauthorized, "User and persona context required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
	})
}

// WithScope attaches scope to ctx.
func WithScope(ctx context.Context, scope domain.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope attached by Persona.
func ScopeFrom(ctx context.Context) (domain.Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(domain.Scope)
	return scope, ok
}
