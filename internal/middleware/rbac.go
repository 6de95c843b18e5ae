package middleware

import (
	"net/http"

	"github.com/openlease/openlease/internal/domain/actor"
)

// RequireRole returns middleware that restricts access to actors with one of
// the given roles.
func RequireRole(roles ...actor.Role) func(http.Handler) http.Handler {
	allowed := make(map[actor.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := ActorFromContext(r.Context())
			if a == nil {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			if !allowed[a.Role] {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
