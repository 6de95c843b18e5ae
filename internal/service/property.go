package service

import (
	"context"
	"fmt"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/authz"
	"github.com/openlease/openlease/internal/domain/property"
	"github.com/openlease/openlease/internal/port/database"
)

// PropertyService manages the property listings of landlords.
type PropertyService struct {
	store    database.Store
	sessions *SessionService
}

// NewPropertyService creates a new property service.
func NewPropertyService(store database.Store, sessions *SessionService) *PropertyService {
	return &PropertyService{store: store, sessions: sessions}
}

// Create lists a new property for the acting landlord. New listings start
// available.
func (s *PropertyService) Create(ctx context.Context, req property.CreateRequest, acting *actor.Actor) (*property.Property, error) {
	if !s.sessions.Authorize(acting, authz.ActionManageProperty) {
		return nil, fmt.Errorf("create property: %w", domain.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &property.Property{
		OwnerID:     acting.ID,
		Address:     req.Address,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		MonthlyRent: req.MonthlyRent,
		Status:      property.StatusAvailable,
	}
	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return p, nil
}

// Get returns a single property. Any authenticated actor may view a listing.
func (s *PropertyService) Get(ctx context.Context, id string, acting *actor.Actor) (*property.Property, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// Update merge-updates the editable fields of a property owned by the acting
// landlord. The request carries the version the caller last read; a stale
// version yields ErrConflict. Occupancy status is never updated here.
func (s *PropertyService) Update(ctx context.Context, id string, req property.UpdateRequest, acting *actor.Actor) (*property.Property, error) {
	if !s.sessions.Authorize(acting, authz.ActionManageProperty) {
		return nil, fmt.Errorf("update property: %w", domain.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	if p.OwnerID != acting.ID {
		return nil, fmt.Errorf("update property: %w", domain.ErrUnauthorized)
	}
	if req.Version != p.Version {
		return nil, fmt.Errorf("property was modified concurrently: %w", domain.ErrConflict)
	}

	if req.Address != "" {
		p.Address = req.Address
	}
	if req.Bedrooms != 0 {
		p.Bedrooms = req.Bedrooms
	}
	if req.Bathrooms != 0 {
		p.Bathrooms = req.Bathrooms
	}
	if req.MonthlyRent != nil {
		p.MonthlyRent = *req.MonthlyRent
	}

	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return p, nil
}

// ListOwn returns every property owned by the acting landlord.
func (s *PropertyService) ListOwn(ctx context.Context, acting *actor.Actor) ([]property.Property, error) {
	if !s.sessions.Authorize(acting, authz.ActionManageProperty) {
		return nil, fmt.Errorf("list properties: %w", domain.ErrUnauthorized)
	}
	return s.store.ListPropertiesByOwner(ctx, acting.ID)
}

// ListAvailable returns every available property, the browse view for tenants.
func (s *PropertyService) ListAvailable(ctx context.Context, acting *actor.Actor) ([]property.Property, error) {
	if acting == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.store.ListAvailableProperties(ctx)
}
