// Package maintenance defines the MaintenanceRequest entity and its status graph.
package maintenance

import (
	"fmt"
	"time"

	"github.com/openlease/openlease/internal/domain"
)

// Category classifies the reported issue.
type Category string

const (
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryHeating    Category = "heating"
	CategorySecurity   Category = "security"
	CategoryAppliance  Category = "appliance"
	CategoryStructural Category = "structural"
	CategoryGeneral    Category = "general"
)

// ValidCategories is the set of all valid issue categories.
var ValidCategories = map[Category]bool{
	CategoryPlumbing:   true,
	CategoryElectrical: true,
	CategoryHeating:    true,
	CategorySecurity:   true,
	CategoryAppliance:  true,
	CategoryStructural: true,
	CategoryGeneral:    true,
}

// Priority indicates how urgently the issue needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities is the set of all valid priorities.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Status represents the handling state of a maintenance request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the status graph. Completed and Cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether target is reachable from current in one step.
func CanTransition(current, target Status) bool {
	for _, s := range transitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Contractor holds the assignment details for a request in progress.
type Contractor struct {
	Name        string    `json:"name"`
	Contact     string    `json:"contact,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
}

// Validate checks the contractor assignment fields.
func (c *Contractor) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("contractor name is required: %w", domain.ErrValidation)
	}
	return nil
}

// MaintenanceRequest represents a reported issue on a property.
//
// Invariant: CompletedAt is non-nil if and only if Status is Completed.
type MaintenanceRequest struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"property_id"`
	ReporterID  string      `json:"reporter_id"`
	Category    Category    `json:"category"`
	Priority    Priority    `json:"priority"`
	Status      Status      `json:"status"`
	Title       string      `json:"title"`
	Details     string      `json:"details,omitempty"`
	Contractor  *Contractor `json:"contractor,omitempty"`
	ActualCost  *float64    `json:"actual_cost,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateRequest holds the fields needed to report a new issue.
type CreateRequest struct {
	PropertyID string   `json:"property_id"`
	Category   Category `json:"category"`
	Priority   Priority `json:"priority"`
	Title      string   `json:"title"`
	Details    string   `json:"details,omitempty"`
}

// Validate checks the CreateRequest enum and required fields.
func (r *CreateRequest) Validate() error {
	if r.PropertyID == "" {
		return fmt.Errorf("property_id is required: %w", domain.ErrValidation)
	}
	if r.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if !ValidCategories[r.Category] {
		return fmt.Errorf("unknown category %q: %w", r.Category, domain.ErrValidation)
	}
	if !ValidPriorities[r.Priority] {
		return fmt.Errorf("unknown priority %q: %w", r.Priority, domain.ErrValidation)
	}
	return nil
}
