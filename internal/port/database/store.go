// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
)

// Store is the port interface for entity persistence. Implementations must
// make every mutating call atomic; ApproveApplication in particular applies
// the approval, the sibling cascade, and the occupancy change as one unit.
type Store interface {
	// Actors
	CreateActor(ctx context.Context, a *actor.Actor) error
	GetActor(ctx context.Context, id string) (*actor.Actor, error)
	GetActorByEmail(ctx context.Context, email string) (*actor.Actor, error)
	UpdateActor(ctx context.Context, a *actor.Actor) error
	ListActors(ctx context.Context) ([]actor.Actor, error)

	// Refresh tokens and revocation
	CreateRefreshToken(ctx context.Context, rt *actor.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*actor.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID string, newRT *actor.RefreshToken) error
	DeleteRefreshToken(ctx context.Context, id string) error
	DeleteRefreshTokensByActor(ctx context.Context, actorID string) error
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)

	// Properties
	CreateProperty(ctx context.Context, p *property.Property) error
	GetProperty(ctx context.Context, id string) (*property.Property, error)
	UpdateProperty(ctx context.Context, p *property.Property) error
	ListPropertiesByOwner(ctx context.Context, ownerID string) ([]property.Property, error)
	ListAvailableProperties(ctx context.Context) ([]property.Property, error)

	// Applications
	CreateApplication(ctx context.Context, a *application.Application) error
	GetApplication(ctx context.Context, id string) (*application.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status application.Status) error
	// ApproveApplication atomically approves the application, rejects every
	// sibling application on the same property still in pending or
	// under_review, and marks the property rented. Returns the IDs of the
	// rejected siblings.
	ApproveApplication(ctx context.Context, id, propertyID string) ([]string, error)
	ListApplicationsByProperty(ctx context.Context, propertyID string) ([]application.Application, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]application.Application, error)
	HasApprovedApplication(ctx context.Context, propertyID, applicantID string) (bool, error)

	// Maintenance requests
	CreateMaintenanceRequest(ctx context.Context, m *maintenance.MaintenanceRequest) error
	GetMaintenanceRequest(ctx context.Context, id string) (*maintenance.MaintenanceRequest, error)
	UpdateMaintenanceRequest(ctx context.Context, m *maintenance.MaintenanceRequest) error
	ListMaintenanceByProperty(ctx context.Context, propertyID string) ([]maintenance.MaintenanceRequest, error)
	ListMaintenanceByReporter(ctx context.Context, reporterID string) ([]maintenance.MaintenanceRequest, error)
	ListMaintenanceByOwner(ctx context.Context, ownerID string) ([]maintenance.MaintenanceRequest, error)
}
