package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openlease/openlease/internal/adapter/otel"
	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/authz"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
	"github.com/openlease/openlease/internal/port/database"
	"github.com/openlease/openlease/internal/port/eventbus"
)

// Event subjects published after committed lifecycle transitions.
const (
	SubjectApplicationSubmitted = "applications.submitted"
	SubjectApplicationApproved  = "applications.approved"
	SubjectApplicationRejected  = "applications.rejected"
	SubjectMaintenanceReported  = "maintenance.reported"
	SubjectMaintenanceAssigned  = "maintenance.assigned"
	SubjectMaintenanceCompleted = "maintenance.completed"
	SubjectMaintenanceCancelled = "maintenance.cancelled"
)

// LifecycleService drives the two request lifecycles: rental applications and
// maintenance requests. Every mutation authorizes the acting actor first and
// applies the full transition atomically against the store.
type LifecycleService struct {
	store    database.Store
	sessions *SessionService
	bus      eventbus.Bus
	metrics  *otel.Metrics
}

// NewLifecycleService creates a new lifecycle engine. bus and metrics may be
// nil; events and instruments are then skipped.
func NewLifecycleService(store database.Store, sessions *SessionService, bus eventbus.Bus, metrics *otel.Metrics) *LifecycleService {
	return &LifecycleService{store: store, sessions: sessions, bus: bus, metrics: metrics}
}

// --- Applications ---

// SubmitApplication creates a new application in pending state. Only tenants
// may apply, and only to properties that are currently available.
func (s *LifecycleService) SubmitApplication(ctx context.Context, req application.CreateRequest, acting *actor.Actor) (*application.Application, error) {
	if !s.sessions.Authorize(acting, authz.ActionSubmitApplication) {
		return nil, fmt.Errorf("submit application: %w", domain.ErrUnauthorized)
	}
	if req.PropertyID == "" {
		return nil, fmt.Errorf("property_id is required: %w", domain.ErrValidation)
	}

	p, err := s.store.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}
	if p.Status != property.StatusAvailable {
		return nil, fmt.Errorf("property is not available: %w", domain.ErrValidation)
	}

	app := &application.Application{
		PropertyID:  req.PropertyID,
		ApplicantID: acting.ID,
		Status:      application.StatusPending,
		Message:     req.Message,
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Add(ctx, 1)
	}
	s.publish(ctx, SubjectApplicationSubmitted, app.ID, app.PropertyID)
	return app, nil
}

// Advance moves an application to the target status. Only the landlord owning
// the target property may decide; the status graph is enforced; approving one
// application atomically rejects its pending and under-review siblings and
// marks the property rented.
func (s *LifecycleService) Advance(ctx context.Context, appID string, target application.Status, acting *actor.Actor) (*application.Application, error) {
	start := time.Now()
	ctx, span := otel.StartTransitionSpan(ctx, "application", appID, string(target))
	defer span.End()

	if !application.ValidStatuses[target] {
		return nil, fmt.Errorf("unknown status %q: %w", target, domain.ErrValidation)
	}

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("advance application: %w", err)
	}

	p, err := s.store.GetProperty(ctx, app.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("advance application: %w", err)
	}

	if !s.sessions.Authorize(acting, authz.ActionDecideApplication) || p.OwnerID != acting.ID {
		return nil, fmt.Errorf("advance application: %w", domain.ErrUnauthorized)
	}

	if !application.CanTransition(app.Status, target) {
		return nil, fmt.Errorf("application %s -> %s: %w", app.Status, target, domain.ErrInvalidTransition)
	}

	switch target {
	case application.StatusApproved:
		rejected, err := s.store.ApproveApplication(ctx, app.ID, app.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("advance application: %w", err)
		}
		if s.metrics != nil {
			s.metrics.ApplicationsApproved.Add(ctx, 1)
			s.metrics.ApplicationsRejected.Add(ctx, int64(len(rejected)))
		}
		s.publish(ctx, SubjectApplicationApproved, app.ID, app.PropertyID)
		for _, rid := range rejected {
			s.publish(ctx, SubjectApplicationRejected, rid, app.PropertyID)
		}
		slog.Info("application approved", "application_id", app.ID, "property_id", app.PropertyID, "cascade_rejected", len(rejected))
	default:
		if err := s.store.UpdateApplicationStatus(ctx, app.ID, target); err != nil {
			return nil, fmt.Errorf("advance application: %w", err)
		}
		if target == application.StatusRejected {
			if s.metrics != nil {
				s.metrics.ApplicationsRejected.Add(ctx, 1)
			}
			s.publish(ctx, SubjectApplicationRejected, app.ID, app.PropertyID)
		}
	}

	if s.metrics != nil {
		s.metrics.TransitionDuration.Record(ctx, time.Since(start).Seconds())
	}
	return s.store.GetApplication(ctx, appID)
}

// ListApplications returns the applications visible to the acting actor:
// tenants see their own, landlords see those on the given property they own.
func (s *LifecycleService) ListApplications(ctx context.Context, propertyID string, acting *actor.Actor) ([]application.Application, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}
	if acting.Role == actor.RoleTenant {
		return s.store.ListApplicationsByApplicant(ctx, acting.ID)
	}

	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if p.OwnerID != acting.ID {
		return nil, fmt.Errorf("list applications: %w", domain.ErrUnauthorized)
	}
	return s.store.ListApplicationsByProperty(ctx, propertyID)
}

// --- Maintenance ---

// ReportMaintenance creates a new maintenance request in pending state.
// Landlords report on their own properties; tenants on properties they hold
// an approved application for.
func (s *LifecycleService) ReportMaintenance(ctx context.Context, req maintenance.CreateRequest, acting *actor.Actor) (*maintenance.MaintenanceRequest, error) {
	if !s.sessions.Authorize(acting, authz.ActionReportMaintenance) {
		return nil, fmt.Errorf("report maintenance: %w", domain.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("report maintenance: %w", err)
	}

	switch acting.Role {
	case actor.RoleLandlord:
		if p.OwnerID != acting.ID {
			return nil, fmt.Errorf("report maintenance: %w", domain.ErrUnauthorized)
		}
	case actor.RoleTenant:
		ok, err := s.store.HasApprovedApplication(ctx, p.ID, acting.ID)
		if err != nil {
			return nil, fmt.Errorf("report maintenance: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("report maintenance: %w", domain.ErrUnauthorized)
		}
	}

	m := &maintenance.MaintenanceRequest{
		PropertyID: req.PropertyID,
		ReporterID: acting.ID,
		Category:   req.Category,
		Priority:   req.Priority,
		Status:     maintenance.StatusPending,
		Title:      req.Title,
		Details:    req.Details,
	}
	if err := s.store.CreateMaintenanceRequest(ctx, m); err != nil {
		return nil, fmt.Errorf("report maintenance: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MaintenanceReported.Add(ctx, 1)
	}
	s.publish(ctx, SubjectMaintenanceReported, m.ID, m.PropertyID)
	return m, nil
}

// AssignContractor moves a pending request to in_progress and records the
// contractor. Landlord-owner only. The property goes under maintenance.
func (s *LifecycleService) AssignContractor(ctx context.Context, reqID string, c maintenance.Contractor, acting *actor.Actor) (*maintenance.MaintenanceRequest, error) {
	start := time.Now()
	ctx, span := otel.StartTransitionSpan(ctx, "maintenance", reqID, string(maintenance.StatusInProgress))
	defer span.End()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	m, p, err := s.ownedRequest(ctx, reqID, acting)
	if err != nil {
		return nil, err
	}

	if !maintenance.CanTransition(m.Status, maintenance.StatusInProgress) {
		return nil, fmt.Errorf("maintenance %s -> %s: %w", m.Status, maintenance.StatusInProgress, domain.ErrInvalidTransition)
	}

	m.Status = maintenance.StatusInProgress
	m.Contractor = &c
	if err := s.store.UpdateMaintenanceRequest(ctx, m); err != nil {
		return nil, fmt.Errorf("assign contractor: %w", err)
	}

	p.Status = property.StatusUnderMaintenance
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		slog.Warn("failed to mark property under maintenance", "property_id", p.ID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.TransitionDuration.Record(ctx, time.Since(start).Seconds())
	}
	s.publish(ctx, SubjectMaintenanceAssigned, m.ID, m.PropertyID)
	return m, nil
}

// Complete moves an in-progress request to completed, recording the actual
// cost and the completion timestamp. Landlord-owner only.
func (s *LifecycleService) Complete(ctx context.Context, reqID string, actualCost float64, acting *actor.Actor) (*maintenance.MaintenanceRequest, error) {
	start := time.Now()
	ctx, span := otel.StartTransitionSpan(ctx, "maintenance", reqID, string(maintenance.StatusCompleted))
	defer span.End()

	if actualCost < 0 {
		return nil, fmt.Errorf("actual cost must not be negative: %w", domain.ErrValidation)
	}

	m, p, err := s.ownedRequest(ctx, reqID, acting)
	if err != nil {
		return nil, err
	}

	if !maintenance.CanTransition(m.Status, maintenance.StatusCompleted) {
		return nil, fmt.Errorf("maintenance %s -> %s: %w", m.Status, maintenance.StatusCompleted, domain.ErrInvalidTransition)
	}

	now := time.Now()
	m.Status = maintenance.StatusCompleted
	m.ActualCost = &actualCost
	m.CompletedAt = &now
	if err := s.store.UpdateMaintenanceRequest(ctx, m); err != nil {
		return nil, fmt.Errorf("complete maintenance: %w", err)
	}

	s.restoreOccupancy(ctx, p)

	if s.metrics != nil {
		s.metrics.MaintenanceCompleted.Add(ctx, 1)
		s.metrics.TransitionDuration.Record(ctx, time.Since(start).Seconds())
	}
	s.publish(ctx, SubjectMaintenanceCompleted, m.ID, m.PropertyID)
	return m, nil
}

// Cancel moves a pending or in-progress request to cancelled. The landlord
// owning the property may always cancel; the reporter may cancel their own
// request while it is still pending.
func (s *LifecycleService) Cancel(ctx context.Context, reqID string, acting *actor.Actor) (*maintenance.MaintenanceRequest, error) {
	ctx, span := otel.StartTransitionSpan(ctx, "maintenance", reqID, string(maintenance.StatusCancelled))
	defer span.End()

	if acting == nil {
		return nil, domain.ErrUnauthorized
	}

	m, err := s.store.GetMaintenanceRequest(ctx, reqID)
	if err != nil {
		return nil, fmt.Errorf("cancel maintenance: %w", err)
	}
	p, err := s.store.GetProperty(ctx, m.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("cancel maintenance: %w", err)
	}

	owner := s.sessions.Authorize(acting, authz.ActionResolveMaintenance) && p.OwnerID == acting.ID
	reporter := m.ReporterID == acting.ID && m.Status == maintenance.StatusPending
	if !owner && !reporter {
		if m.Status.Terminal() {
			// Terminal states fail the same way for everyone.
			return nil, fmt.Errorf("maintenance %s -> %s: %w", m.Status, maintenance.StatusCancelled, domain.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("cancel maintenance: %w", domain.ErrUnauthorized)
	}

	if !maintenance.CanTransition(m.Status, maintenance.StatusCancelled) {
		return nil, fmt.Errorf("maintenance %s -> %s: %w", m.Status, maintenance.StatusCancelled, domain.ErrInvalidTransition)
	}

	wasInProgress := m.Status == maintenance.StatusInProgress
	m.Status = maintenance.StatusCancelled
	if err := s.store.UpdateMaintenanceRequest(ctx, m); err != nil {
		return nil, fmt.Errorf("cancel maintenance: %w", err)
	}

	if wasInProgress {
		s.restoreOccupancy(ctx, p)
	}

	s.publish(ctx, SubjectMaintenanceCancelled, m.ID, m.PropertyID)
	return m, nil
}

// ListMaintenance returns the requests visible to the acting actor: landlords
// see requests across their properties, tenants see their own reports.
func (s *LifecycleService) ListMaintenance(ctx context.Context, acting *actor.Actor) ([]maintenance.MaintenanceRequest, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}
	if acting.Role == actor.RoleLandlord {
		return s.store.ListMaintenanceByOwner(ctx, acting.ID)
	}
	return s.store.ListMaintenanceByReporter(ctx, acting.ID)
}

// ownedRequest fetches a request and its property and checks the acting actor
// is the authorized landlord owner.
func (s *LifecycleService) ownedRequest(ctx context.Context, reqID string, acting *actor.Actor) (*maintenance.MaintenanceRequest, *property.Property, error) {
	m, err := s.store.GetMaintenanceRequest(ctx, reqID)
	if err != nil {
		return nil, nil, fmt.Errorf("get maintenance request: %w", err)
	}
	p, err := s.store.GetProperty(ctx, m.PropertyID)
	if err != nil {
		return nil, nil, fmt.Errorf("get property: %w", err)
	}
	if !s.sessions.Authorize(acting, authz.ActionResolveMaintenance) || p.OwnerID != acting.ID {
		return nil, nil, fmt.Errorf("resolve maintenance: %w", domain.ErrUnauthorized)
	}
	return m, p, nil
}

// restoreOccupancy returns a property from under_maintenance to rented when a
// current rental exists, otherwise to available.
func (s *LifecycleService) restoreOccupancy(ctx context.Context, p *property.Property) {
	if p.Status != property.StatusUnderMaintenance {
		return
	}
	apps, err := s.store.ListApplicationsByProperty(ctx, p.ID)
	if err != nil {
		slog.Warn("failed to restore property occupancy", "property_id", p.ID, "error", err)
		return
	}
	p.Status = property.StatusAvailable
	for _, a := range apps {
		if a.Status == application.StatusApproved {
			p.Status = property.StatusRented
			break
		}
	}
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		slog.Warn("failed to restore property occupancy", "property_id", p.ID, "error", err)
	}
}

// publish emits a lifecycle event best-effort; transitions never fail because
// the bus is down.
func (s *LifecycleService) publish(ctx context.Context, subject, id, propertyID string) {
	if s.bus == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"id": id, "property_id": propertyID})
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		slog.Warn("failed to publish lifecycle event", "subject", subject, "error", err)
	}
}
