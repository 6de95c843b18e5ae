// Package property defines the Property domain entity.
package property

import (
	"fmt"
	"time"

	"github.com/openlease/openlease/internal/domain"
)

// OccupancyStatus represents the current occupancy of a property. It is driven
// exclusively by the application and maintenance lifecycles, never set
// directly by a caller.
type OccupancyStatus string

const (
	StatusAvailable        OccupancyStatus = "available"
	StatusRented           OccupancyStatus = "rented"
	StatusUnderMaintenance OccupancyStatus = "under_maintenance"
)

// Property represents a rental unit owned by exactly one landlord.
type Property struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Address     string          `json:"address"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	MonthlyRent float64         `json:"monthly_rent"`
	Status      OccupancyStatus `json:"status"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateRequest holds the fields needed to list a new property.
type CreateRequest struct {
	Address     string  `json:"address"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	MonthlyRent float64 `json:"monthly_rent"`
}

// Validate checks the CreateRequest against the numeric edge policy: rent must
// be non-negative, bedroom and bathroom counts at least 1.
func (r *CreateRequest) Validate() error {
	if r.Address == "" {
		return fmt.Errorf("address is required: %w", domain.ErrValidation)
	}
	if r.Bedrooms < 1 {
		return fmt.Errorf("bedrooms must be at least 1: %w", domain.ErrValidation)
	}
	if r.Bathrooms < 1 {
		return fmt.Errorf("bathrooms must be at least 1: %w", domain.ErrValidation)
	}
	if r.MonthlyRent < 0 {
		return fmt.Errorf("monthly rent must not be negative: %w", domain.ErrValidation)
	}
	return nil
}

// UpdateRequest holds the editable fields of a property. Zero values leave the
// corresponding field unchanged; rent uses a pointer so 0 is expressible.
type UpdateRequest struct {
	Address     string   `json:"address,omitempty"`
	Bedrooms    int      `json:"bedrooms,omitempty"`
	Bathrooms   int      `json:"bathrooms,omitempty"`
	MonthlyRent *float64 `json:"monthly_rent,omitempty"`
	Version     int      `json:"version"`
}

// Validate checks the UpdateRequest numeric fields.
func (r *UpdateRequest) Validate() error {
	if r.Bedrooms != 0 && r.Bedrooms < 1 {
		return fmt.Errorf("bedrooms must be at least 1: %w", domain.ErrValidation)
	}
	if r.Bathrooms != 0 && r.Bathrooms < 1 {
		return fmt.Errorf("bathrooms must be at least 1: %w", domain.ErrValidation)
	}
	if r.MonthlyRent != nil && *r.MonthlyRent < 0 {
		return fmt.Errorf("monthly rent must not be negative: %w", domain.ErrValidation)
	}
	return nil
}
