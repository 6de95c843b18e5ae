package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openlease/openlease/internal/adapter/localidp"
	"github.com/openlease/openlease/internal/adapter/memory"
	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/service"
)

type mapCache struct {
	m map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.m[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

func newAuthEnv(t *testing.T) (*service.SessionService, string) {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Defaults().Auth
	cfg.BcryptCost = 4
	sessions := service.NewSessionService(store, localidp.New(store), &mapCache{m: make(map[string][]byte)}, &cfg)

	if _, err := sessions.Register(context.Background(), &actor.CreateRequest{
		Email:       "tenant@example.com",
		DisplayName: "Terry Tenant",
		Password:    "correct-horse",
		Role:        actor.RoleTenant,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, _, err := sessions.Login(context.Background(), actor.LoginRequest{Email: "tenant@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return sessions, resp.AccessToken
}

func okHandler(t *testing.T, wantActor bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := ActorFromContext(r.Context())
		if wantActor && a == nil {
			t.Error("expected actor in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthPublicPathExempt(t *testing.T) {
	sessions, _ := newAuthEnv(t)
	handler := Auth(sessions)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("public path: expected 200, got %d", rec.Code)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	sessions, _ := newAuthEnv(t)
	handler := Auth(sessions)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: expected 401, got %d", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	sessions, _ := newAuthEnv(t)
	handler := Auth(sessions)(okHandler(t, false))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", http.NoBody)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: expected 401, got %d", rec.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	sessions, token := newAuthEnv(t)
	handler := Auth(sessions)(okHandler(t, true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", rec.Code)
	}
}
