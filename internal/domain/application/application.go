// Package application defines the rental Application entity and its status graph.
package application

import "time"

// Status represents the review state of a rental application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// ValidStatuses is the set of all valid application statuses.
var ValidStatuses = map[Status]bool{
	StatusPending:     true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
}

// transitions is the status graph. UnderReview is skippable: a landlord may
// decide a pending application directly.
var transitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {},
	StatusRejected:    {},
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

// Application represents one tenant's request to rent one property. A property
// may hold many concurrent applications; approving one rejects the rest.
type Application struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	ApplicantID string    `json:"applicant_id"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest holds the fields needed to submit a new application.
type CreateRequest struct {
	PropertyID string `json:"property_id"`
	Message    string `json:"message,omitempty"`
}
