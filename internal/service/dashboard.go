package service

import (
	"context"
	"fmt"
	"math"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/authz"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
	"github.com/openlease/openlease/internal/port/database"
)

// LandlordDashboard aggregates portfolio figures for a landlord.
type LandlordDashboard struct {
	PropertyCount       int     `json:"property_count"`
	RentedCount         int     `json:"rented_count"`
	OccupancyRate       float64 `json:"occupancy_rate"` // percent, one decimal
	MonthlyIncome       float64 `json:"monthly_income"` // sum of rent over rented properties
	PendingApplications int     `json:"pending_applications"`
	OpenMaintenance     int     `json:"open_maintenance"`
}

// TenantDashboard aggregates request figures for a tenant.
type TenantDashboard struct {
	ApplicationsTotal    int `json:"applications_total"`
	ApplicationsPending  int `json:"applications_pending"`
	ApplicationsApproved int `json:"applications_approved"`
	ApplicationsRejected int `json:"applications_rejected"`
	OpenReports          int `json:"open_reports"`
}

// DashboardService computes the per-role summary views.
type DashboardService struct {
	store    database.Store
	sessions *SessionService
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store database.Store, sessions *SessionService) *DashboardService {
	return &DashboardService{store: store, sessions: sessions}
}

// Landlord builds the portfolio summary for the acting landlord.
func (s *DashboardService) Landlord(ctx context.Context, acting *actor.Actor) (*LandlordDashboard, error) {
	if !s.sessions.Authorize(acting, authz.ActionViewOwnerDashboard) {
		return nil, fmt.Errorf("landlord dashboard: %w", domain.ErrUnauthorized)
	}

	props, err := s.store.ListPropertiesByOwner(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("landlord dashboard: %w", err)
	}

	d := &LandlordDashboard{PropertyCount: len(props)}
	for _, p := range props {
		if p.Status == property.StatusRented {
			d.RentedCount++
			d.MonthlyIncome += p.MonthlyRent
		}

		apps, err := s.store.ListApplicationsByProperty(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("landlord dashboard: %w", err)
		}
		for _, a := range apps {
			if a.Status == application.StatusPending || a.Status == application.StatusUnderReview {
				d.PendingApplications++
			}
		}
	}

	reqs, err := s.store.ListMaintenanceByOwner(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("landlord dashboard: %w", err)
	}
	for _, m := range reqs {
		if !m.Status.Terminal() {
			d.OpenMaintenance++
		}
	}

	if d.PropertyCount > 0 {
		rate := float64(d.RentedCount) / float64(d.PropertyCount) * 100
		d.OccupancyRate = math.Round(rate*10) / 10
	}
	return d, nil
}

// Tenant builds the request summary for the acting tenant.
func (s *DashboardService) Tenant(ctx context.Context, acting *actor.Actor) (*TenantDashboard, error) {
	if acting == nil || acting.Role != actor.RoleTenant {
		return nil, fmt.Errorf("tenant dashboard: %w", domain.ErrUnauthorized)
	}

	apps, err := s.store.ListApplicationsByApplicant(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("tenant dashboard: %w", err)
	}

	d := &TenantDashboard{ApplicationsTotal: len(apps)}
	for _, a := range apps {
		switch a.Status {
		case application.StatusPending, application.StatusUnderReview:
			d.ApplicationsPending++
		case application.StatusApproved:
			d.ApplicationsApproved++
		case application.StatusRejected:
			d.ApplicationsRejected++
		}
	}

	reqs, err := s.store.ListMaintenanceByReporter(ctx, acting.ID)
	if err != nil {
		return nil, fmt.Errorf("tenant dashboard: %w", err)
	}
	for _, m := range reqs {
		if m.Status != maintenance.StatusCompleted && m.Status != maintenance.StatusCancelled {
			d.OpenReports++
		}
	}
	return d, nil
}
