package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openlease/openlease/internal/adapter/memory"
	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
)

func newLifecycleEnv(t *testing.T) (*memory.Store, *LifecycleService) {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Defaults()
	sessions := NewSessionService(store, nil, nil, &cfg.Auth)
	return store, NewLifecycleService(store, sessions, nil, nil)
}

func createActor(t *testing.T, store *memory.Store, email string, role actor.Role) *actor.Actor {
	t.Helper()
	a := &actor.Actor{Email: email, DisplayName: email, Role: role, Enabled: true}
	if err := store.CreateActor(context.Background(), a); err != nil {
		t.Fatalf("create actor: %v", err)
	}
	return a
}

func createProperty(t *testing.T, store *memory.Store, ownerID string) *property.Property {
	t.Helper()
	p := &property.Property{
		OwnerID:     ownerID,
		Address:     "12 Elm Street",
		Bedrooms:    2,
		Bathrooms:   1,
		MonthlyRent: 1450,
		Status:      property.StatusAvailable,
	}
	if err := store.CreateProperty(context.Background(), p); err != nil {
		t.Fatalf("create property: %v", err)
	}
	return p
}

func TestSubmitApplicationStartsPending(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	app, err := svc.SubmitApplication(context.Background(), application.CreateRequest{PropertyID: p.ID}, tenant)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	if app.Status != application.StatusPending {
		t.Errorf("new application status = %s, want pending", app.Status)
	}
	if app.ApplicantID != tenant.ID {
		t.Errorf("applicant = %s, want %s", app.ApplicantID, tenant.ID)
	}
}

func TestSubmitApplicationLandlordForbidden(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	p := createProperty(t, store, landlord.ID)

	_, err := svc.SubmitApplication(context.Background(), application.CreateRequest{PropertyID: p.ID}, landlord)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("SubmitApplication() error = %v, want ErrUnauthorized", err)
	}
}

func TestSubmitApplicationUnavailableProperty(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)
	p.Status = property.StatusRented
	if err := store.UpdateProperty(context.Background(), p); err != nil {
		t.Fatalf("update property: %v", err)
	}

	_, err := svc.SubmitApplication(context.Background(), application.CreateRequest{PropertyID: p.ID}, tenant)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SubmitApplication() error = %v, want ErrValidation", err)
	}
}

func TestAdvanceApproveCascadesSiblings(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	p := createProperty(t, store, landlord.ID)

	var apps []*application.Application
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"} {
		tenant := createActor(t, store, email, actor.RoleTenant)
		app, err := svc.SubmitApplication(ctx, application.CreateRequest{PropertyID: p.ID}, tenant)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		apps = append(apps, app)
	}

	// One sibling moves to under_review, one is rejected up front.
	if _, err := svc.Advance(ctx, apps[1].ID, application.StatusUnderReview, landlord); err != nil {
		t.Fatalf("advance to under_review: %v", err)
	}
	if _, err := svc.Advance(ctx, apps[2].ID, application.StatusRejected, landlord); err != nil {
		t.Fatalf("advance to rejected: %v", err)
	}

	winner, err := svc.Advance(ctx, apps[0].ID, application.StatusApproved, landlord)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if winner.Status != application.StatusApproved {
		t.Errorf("winner status = %s, want approved", winner.Status)
	}

	// Pending and under_review siblings are rejected; the already-rejected one
	// stays rejected.
	for _, id := range []string{apps[1].ID, apps[2].ID, apps[3].ID} {
		got, err := store.GetApplication(ctx, id)
		if err != nil {
			t.Fatalf("get application: %v", err)
		}
		if got.Status != application.StatusRejected {
			t.Errorf("sibling %s status = %s, want rejected", id, got.Status)
		}
	}

	gotProp, err := store.GetProperty(ctx, p.ID)
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	if gotProp.Status != property.StatusRented {
		t.Errorf("property status = %s, want rented", gotProp.Status)
	}
}

func TestAdvanceFromTerminalFails(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	app, err := svc.SubmitApplication(ctx, application.CreateRequest{PropertyID: p.ID}, tenant)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Advance(ctx, app.ID, application.StatusRejected, landlord); err != nil {
		t.Fatalf("reject: %v", err)
	}

	for _, target := range []application.Status{
		application.StatusPending,
		application.StatusUnderReview,
		application.StatusApproved,
		application.StatusRejected,
	} {
		if _, err := svc.Advance(ctx, app.ID, target, landlord); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("Advance(rejected -> %s) error = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestAdvanceUnknownStatus(t *testing.T) {
	_, svc := newLifecycleEnv(t)
	_, err := svc.Advance(context.Background(), "any", application.Status("archived"), &actor.Actor{Role: actor.RoleLandlord})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Advance() error = %v, want ErrValidation", err)
	}
}

func TestAdvanceAuthorization(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	other := createActor(t, store, "other@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	app, err := svc.SubmitApplication(ctx, application.CreateRequest{PropertyID: p.ID}, tenant)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Advance(ctx, app.ID, application.StatusApproved, tenant); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("tenant approval error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Advance(ctx, app.ID, application.StatusApproved, other); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("non-owner approval error = %v, want ErrUnauthorized", err)
	}
}

func TestMaintenanceFullFlow(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	// Tenant needs an approved application to report.
	app, err := svc.SubmitApplication(ctx, application.CreateRequest{PropertyID: p.ID}, tenant)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Advance(ctx, app.ID, application.StatusApproved, landlord); err != nil {
		t.Fatalf("approve: %v", err)
	}

	m, err := svc.ReportMaintenance(ctx, maintenance.CreateRequest{
		PropertyID: p.ID,
		Category:   maintenance.CategoryPlumbing,
		Priority:   maintenance.PriorityHigh,
		Title:      "Leaking sink",
	}, tenant)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if m.Status != maintenance.StatusPending {
		t.Fatalf("new request status = %s, want pending", m.Status)
	}

	m, err = svc.AssignContractor(ctx, m.ID, maintenance.Contractor{Name: "Fix-It Fast"}, landlord)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if m.Status != maintenance.StatusInProgress {
		t.Errorf("status after assign = %s, want in_progress", m.Status)
	}
	gotProp, _ := store.GetProperty(ctx, p.ID)
	if gotProp.Status != property.StatusUnderMaintenance {
		t.Errorf("property status = %s, want under_maintenance", gotProp.Status)
	}

	m, err = svc.Complete(ctx, m.ID, 75, landlord)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if m.Status != maintenance.StatusCompleted {
		t.Errorf("status after complete = %s, want completed", m.Status)
	}
	if m.CompletedAt == nil {
		t.Error("CompletedAt must be set on completion")
	}
	if m.ActualCost == nil || *m.ActualCost != 75 {
		t.Errorf("ActualCost = %v, want 75", m.ActualCost)
	}

	// Occupancy returns to rented because an approved application exists.
	gotProp, _ = store.GetProperty(ctx, p.ID)
	if gotProp.Status != property.StatusRented {
		t.Errorf("property status after completion = %s, want rented", gotProp.Status)
	}

	// Terminal: no further transitions.
	if _, err := svc.Cancel(ctx, m.ID, landlord); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Cancel(completed) error = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteNegativeCost(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	p := createProperty(t, store, landlord.ID)

	m, err := svc.ReportMaintenance(ctx, maintenance.CreateRequest{
		PropertyID: p.ID,
		Category:   maintenance.CategoryGeneral,
		Priority:   maintenance.PriorityLow,
		Title:      "Squeaky door",
	}, landlord)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if _, err := svc.AssignContractor(ctx, m.ID, maintenance.Contractor{Name: "Handy"}, landlord); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := svc.Complete(ctx, m.ID, -1, landlord); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Complete(-1) error = %v, want ErrValidation", err)
	}
}

func TestCompleteFromPendingFails(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	p := createProperty(t, store, landlord.ID)

	m, err := svc.ReportMaintenance(ctx, maintenance.CreateRequest{
		PropertyID: p.ID,
		Category:   maintenance.CategoryGeneral,
		Priority:   maintenance.PriorityLow,
		Title:      "Squeaky door",
	}, landlord)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if _, err := svc.Complete(ctx, m.ID, 10, landlord); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Complete(pending) error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelRules(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	ctx := context.Background()
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	app, err := svc.SubmitApplication(ctx, application.CreateRequest{PropertyID: p.ID}, tenant)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Advance(ctx, app.ID, application.StatusApproved, landlord); err != nil {
		t.Fatalf("approve: %v", err)
	}

	report := func() *maintenance.MaintenanceRequest {
		m, err := svc.ReportMaintenance(ctx, maintenance.CreateRequest{
			PropertyID: p.ID,
			Category:   maintenance.CategoryHeating,
			Priority:   maintenance.PriorityMedium,
			Title:      "Radiator cold",
		}, tenant)
		if err != nil {
			t.Fatalf("report: %v", err)
		}
		return m
	}

	// Reporter may cancel while pending.
	m := report()
	if _, err := svc.Cancel(ctx, m.ID, tenant); err != nil {
		t.Fatalf("reporter cancel pending: %v", err)
	}

	// Reporter may not cancel once in progress; the owner may.
	m = report()
	if _, err := svc.AssignContractor(ctx, m.ID, maintenance.Contractor{Name: "Heatpro"}, landlord); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Cancel(ctx, m.ID, tenant); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("reporter cancel in_progress error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Cancel(ctx, m.ID, landlord); err != nil {
		t.Fatalf("owner cancel in_progress: %v", err)
	}

	// Cancelling the in-progress work restores occupancy.
	gotProp, _ := store.GetProperty(ctx, p.ID)
	if gotProp.Status != property.StatusRented {
		t.Errorf("property status after cancel = %s, want rented", gotProp.Status)
	}
}

func TestReportMaintenanceTenantWithoutLease(t *testing.T) {
	store, svc := newLifecycleEnv(t)
	landlord := createActor(t, store, "owner@example.com", actor.RoleLandlord)
	tenant := createActor(t, store, "tenant@example.com", actor.RoleTenant)
	p := createProperty(t, store, landlord.ID)

	_, err := svc.ReportMaintenance(context.Background(), maintenance.CreateRequest{
		PropertyID: p.ID,
		Category:   maintenance.CategoryGeneral,
		Priority:   maintenance.PriorityLow,
		Title:      "Broken latch",
	}, tenant)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("ReportMaintenance() error = %v, want ErrUnauthorized", err)
	}
}
