package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openlease/openlease/internal/domain/actor"
)

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		actor    *actor.Actor
		required actor.Role
		want     int
	}{
		{"landlord allowed", &actor.Actor{Role: actor.RoleLandlord}, actor.RoleLandlord, http.StatusOK},
		{"tenant allowed", &actor.Actor{Role: actor.RoleTenant}, actor.RoleTenant, http.StatusOK},
		{"tenant forbidden", &actor.Actor{Role: actor.RoleTenant}, actor.RoleLandlord, http.StatusForbidden},
		{"landlord forbidden", &actor.Actor{Role: actor.RoleLandlord}, actor.RoleTenant, http.StatusForbidden},
		{"no actor", nil, actor.RoleLandlord, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.required)(next)

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.actor != nil {
				req = req.WithContext(ContextWithActor(req.Context(), tt.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
