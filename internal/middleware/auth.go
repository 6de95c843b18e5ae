package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/service"
)

type authActorCtxKey struct{}
type claimsCtxKey struct{}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":               true,
	"/health/ready":         true,
	"/api/v1/auth/register": true,
	"/api/v1/auth/login":    true,
	"/api/v1/auth/refresh":  true,
}

// Auth returns middleware that validates the bearer token and injects the
// authenticated actor into the request context. Validation is fail-closed:
// a token whose revocation state cannot be determined is rejected.
func Auth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			a, claims, err := sessions.CurrentActor(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authActorCtxKey{}, a)
			ctx = context.WithValue(ctx, claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor from the request context.
func ActorFromContext(ctx context.Context) *actor.Actor {
	a, _ := ctx.Value(authActorCtxKey{}).(*actor.Actor)
	return a
}

// ClaimsFromContext returns the token claims from the request context.
func ClaimsFromContext(ctx context.Context) *actor.TokenClaims {
	c, _ := ctx.Value(claimsCtxKey{}).(*actor.TokenClaims)
	return c
}

// ContextWithActor injects an actor into the context. Exported only for use
// in handler tests.
func ContextWithActor(ctx context.Context, a *actor.Actor) context.Context {
	return context.WithValue(ctx, authActorCtxKey{}, a)
}
