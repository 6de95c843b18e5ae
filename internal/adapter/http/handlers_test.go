package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openlease/openlease/internal/adapter/localidp"
	"github.com/openlease/openlease/internal/adapter/memory"
	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
	"github.com/openlease/openlease/internal/middleware"
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

type testServer struct {
	router   chi.Router
	sessions *service.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	blobs := memory.NewBlobs("/api/v1/documents")
	cache := &mapCache{m: make(map[string][]byte)}

	cfg := config.Defaults().Auth
	cfg.BcryptCost = 4

	sessions := service.NewSessionService(store, localidp.New(store), cache, &cfg)
	lifecycle := service.NewLifecycleService(store, sessions, nil, nil)

	h := &Handlers{
		Sessions:  sessions,
		Lifecycle: lifecycle,
		Property:  service.NewPropertyService(store, sessions),
		Profile:   service.NewProfileService(store, blobs, cache),
		Dashboard: service.NewDashboardService(store, sessions),
		Documents: blobs,
	}

	r := chi.NewRouter()
	r.Use(middleware.Auth(sessions))
	MountRoutes(r, h, nil)

	return &testServer{router: r, sessions: sessions}
}

// do executes a JSON request, optionally authenticated.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates an actor through the API and returns its token.
func (ts *testServer) registerAndLogin(t *testing.T, email string, role actor.Role) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", actor.CreateRequest{
		Email:       email,
		DisplayName: email,
		Password:    "correct-horse",
		Role:        role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", email, rec.Code, rec.Body)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", actor.LoginRequest{
		Email:    email,
		Password: "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, rec.Code, rec.Body)
	}

	var resp actor.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body)
	}
	return v
}

func TestAuthFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin(t, "tenant@example.com", actor.RoleTenant)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	me := decode[actor.Actor](t, rec)
	if me.Email != "tenant@example.com" || me.Role != actor.RoleTenant {
		t.Errorf("me = %+v", me)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: status %d, want 401", rec.Code)
	}
}

func TestPropertyEndpoints(t *testing.T) {
	ts := newTestServer(t)
	landlord := ts.registerAndLogin(t, "owner@example.com", actor.RoleLandlord)
	tenant := ts.registerAndLogin(t, "tenant@example.com", actor.RoleTenant)

	// Tenants may not create listings.
	rec := ts.do(t, http.MethodPost, "/api/v1/properties", tenant, property.CreateRequest{
		Address: "12 Elm Street", Bedrooms: 2, Bathrooms: 1, MonthlyRent: 1450,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("tenant create: status %d, want 403", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/properties", landlord, property.CreateRequest{
		Address: "12 Elm Street", Bedrooms: 2, Bathrooms: 1, MonthlyRent: 1450,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body)
	}
	created := decode[property.Property](t, rec)

	// Invalid payloads are 400.
	rec = ts.do(t, http.MethodPost, "/api/v1/properties", landlord, property.CreateRequest{
		Address: "No Bedrooms Lane", Bedrooms: 0, Bathrooms: 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create: status %d, want 400", rec.Code)
	}

	// Tenants browse available listings.
	rec = ts.do(t, http.MethodGet, "/api/v1/properties/available", tenant, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("available: status %d", rec.Code)
	}
	if listings := decode[[]property.Property](t, rec); len(listings) != 1 {
		t.Errorf("available listings = %d, want 1", len(listings))
	}

	// Stale version yields 409.
	rent := 1500.0
	rec = ts.do(t, http.MethodPut, "/api/v1/properties/"+created.ID, landlord, property.UpdateRequest{
		MonthlyRent: &rent, Version: created.Version,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", rec.Code, rec.Body)
	}
	rec = ts.do(t, http.MethodPut, "/api/v1/properties/"+created.ID, landlord, property.UpdateRequest{
		MonthlyRent: &rent, Version: created.Version,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("stale update: status %d, want 409", rec.Code)
	}
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	landlord := ts.registerAndLogin(t, "owner@example.com", actor.RoleLandlord)
	tenantA := ts.registerAndLogin(t, "a@example.com", actor.RoleTenant)
	tenantB := ts.registerAndLogin(t, "b@example.com", actor.RoleTenant)

	rec := ts.do(t, http.MethodPost, "/api/v1/properties", landlord, property.CreateRequest{
		Address: "12 Elm Street", Bedrooms: 2, Bathrooms: 1, MonthlyRent: 1450,
	})
	p := decode[property.Property](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/v1/applications", tenantA, application.CreateRequest{PropertyID: p.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit A: status %d: %s", rec.Code, rec.Body)
	}
	appA := decode[application.Application](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/v1/applications", tenantB, application.CreateRequest{PropertyID: p.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit B: status %d: %s", rec.Code, rec.Body)
	}

	// Landlords may not submit.
	rec = ts.do(t, http.MethodPost, "/api/v1/applications", landlord, application.CreateRequest{PropertyID: p.ID})
	if rec.Code != http.StatusForbidden {
		t.Errorf("landlord submit: status %d, want 403", rec.Code)
	}

	// Approval cascades.
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/%s/advance", appA.ID), landlord,
		map[string]string{"status": "approved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status %d: %s", rec.Code, rec.Body)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/applications", tenantB, nil)
	apps := decode[[]application.Application](t, rec)
	if len(apps) != 1 || apps[0].Status != application.StatusRejected {
		t.Errorf("sibling after cascade = %+v, want rejected", apps)
	}

	// Deciding a settled application is a conflict.
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/%s/advance", appA.ID), landlord,
		map[string]string{"status": "rejected"})
	if rec.Code != http.StatusConflict {
		t.Errorf("advance terminal: status %d, want 409", rec.Code)
	}
}

func TestMaintenanceAndDashboardOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	landlord := ts.registerAndLogin(t, "owner@example.com", actor.RoleLandlord)
	tenant := ts.registerAndLogin(t, "tenant@example.com", actor.RoleTenant)

	rec := ts.do(t, http.MethodPost, "/api/v1/properties", landlord, property.CreateRequest{
		Address: "12 Elm Street", Bedrooms: 2, Bathrooms: 1, MonthlyRent: 1450,
	})
	p := decode[property.Property](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/v1/applications", tenant, application.CreateRequest{PropertyID: p.ID})
	app := decode[application.Application](t, rec)
	ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/%s/advance", app.ID), landlord,
		map[string]string{"status": "approved"})

	rec = ts.do(t, http.MethodPost, "/api/v1/maintenance", tenant, maintenance.CreateRequest{
		PropertyID: p.ID,
		Category:   maintenance.CategoryPlumbing,
		Priority:   maintenance.PriorityHigh,
		Title:      "Leaking sink",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("report: status %d: %s", rec.Code, rec.Body)
	}
	m := decode[maintenance.MaintenanceRequest](t, rec)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance/%s/assign", m.ID), landlord,
		maintenance.Contractor{Name: "Fix-It Fast"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status %d: %s", rec.Code, rec.Body)
	}

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/maintenance/%s/complete", m.ID), landlord,
		map[string]float64{"actual_cost": 75})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status %d: %s", rec.Code, rec.Body)
	}
	done := decode[maintenance.MaintenanceRequest](t, rec)
	if done.Status != maintenance.StatusCompleted || done.CompletedAt == nil {
		t.Errorf("completed request = %+v", done)
	}

	// Landlord dashboard reflects the rented property.
	rec = ts.do(t, http.MethodGet, "/api/v1/dashboard/landlord", landlord, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}
	dash := decode[service.LandlordDashboard](t, rec)
	if dash.PropertyCount != 1 || dash.RentedCount != 1 || dash.MonthlyIncome != 1450 {
		t.Errorf("dashboard = %+v", dash)
	}
	if dash.OccupancyRate != 100 {
		t.Errorf("occupancy = %v, want 100", dash.OccupancyRate)
	}

	// Role guard on dashboards.
	rec = ts.do(t, http.MethodGet, "/api/v1/dashboard/landlord", tenant, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("tenant on landlord dashboard: status %d, want 403", rec.Code)
	}
}

func TestProfileImageOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	tenant := ts.registerAndLogin(t, "tenant@example.com", actor.RoleTenant)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/image", bytes.NewReader([]byte{0xFF, 0xD8, 0xFF}))
	req.Header.Set("Authorization", "Bearer "+tenant)
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d: %s", rec.Code, rec.Body)
	}
	resp := decode[map[string]string](t, rec)

	rec = ts.do(t, http.MethodGet, resp["url"], tenant, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %s, want image/jpeg", ct)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/profile/image", tenant, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, resp["url"], tenant, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("serve after delete: status %d, want 404", rec.Code)
	}
}
