// Package memory implements the database store port in process memory.
//
// It backs tests and local development without PostgreSQL. A single mutex
// serializes every operation, which also gives ApproveApplication the same
// all-or-nothing behavior as the SQL transaction in the postgres adapter.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/application"
	"github.com/openlease/openlease/internal/domain/maintenance"
	"github.com/openlease/openlease/internal/domain/property"
)

// Store is an in-memory implementation of database.Store.
type Store struct {
	mu            sync.Mutex
	actors        map[string]*actor.Actor
	refreshTokens map[string]*actor.RefreshToken
	revoked       map[string]time.Time
	properties    map[string]*property.Property
	applications  map[string]*application.Application
	maintenance   map[string]*maintenance.MaintenanceRequest
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		actors:        make(map[string]*actor.Actor),
		refreshTokens: make(map[string]*actor.RefreshToken),
		revoked:       make(map[string]time.Time),
		properties:    make(map[string]*property.Property),
		applications:  make(map[string]*application.Application),
		maintenance:   make(map[string]*maintenance.MaintenanceRequest),
	}
}

// --- Actors ---

func (s *Store) CreateActor(_ context.Context, a *actor.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.actors {
		if existing.Email == a.Email {
			return fmt.Errorf("create actor: email taken: %w", domain.ErrConflict)
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	s.actors[a.ID] = &cp
	return nil
}

func (s *Store) GetActor(_ context.Context, id string) (*actor.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok {
		return nil, fmt.Errorf("get actor %s: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) GetActorByEmail(_ context.Context, email string) (*actor.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actors {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get actor by email: %w", domain.ErrNotFound)
}

func (s *Store) UpdateActor(_ context.Context, a *actor.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.actors[a.ID]
	if !ok {
		return fmt.Errorf("update actor %s: %w", a.ID, domain.ErrNotFound)
	}
	existing.DisplayName = a.DisplayName
	existing.PasswordHash = a.PasswordHash
	existing.Phone = a.Phone
	existing.Bio = a.Bio
	existing.Enabled = a.Enabled
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *Store) ListActors(_ context.Context) ([]actor.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]actor.Actor, 0, len(s.actors))
	for _, a := range s.actors {
		out = append(out, *a)
	}
	return out, nil
}

// --- Refresh tokens and revocation ---

func (s *Store) CreateRefreshToken(_ context.Context, rt *actor.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	rt.CreatedAt = time.Now()
	cp := *rt
	s.refreshTokens[rt.ID] = &cp
	return nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, hash string) (*actor.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.refreshTokens {
		if rt.TokenHash == hash {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get refresh token: %w", domain.ErrNotFound)
}

func (s *Store) RotateRefreshToken(_ context.Context, oldID string, newRT *actor.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshTokens[oldID]; !ok {
		return fmt.Errorf("rotate refresh token: %w", domain.ErrNotFound)
	}
	delete(s.refreshTokens, oldID)
	if newRT.ID == "" {
		newRT.ID = uuid.NewString()
	}
	newRT.CreatedAt = time.Now()
	cp := *newRT
	s.refreshTokens[newRT.ID] = &cp
	return nil
}

func (s *Store) DeleteRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshTokens, id)
	return nil
}

func (s *Store) DeleteRefreshTokensByActor(_ context.Context, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.refreshTokens {
		if rt.ActorID == actorID {
			delete(s.refreshTokens, id)
		}
	}
	return nil
}

func (s *Store) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	return nil
}

func (s *Store) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

func (s *Store) PurgeExpiredTokens(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := time.Now()
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n, nil
}

// --- Properties ---

func (s *Store) CreateProperty(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = property.StatusAvailable
	}
	p.Version = 1
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.properties[p.ID] = &cp
	return nil
}

func (s *Store) GetProperty(_ context.Context, id string) (*property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, fmt.Errorf("get property %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdateProperty(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.properties[p.ID]
	if !ok || existing.Version != p.Version {
		return fmt.Errorf("update property %s: %w", p.ID, domain.ErrConflict)
	}
	cp := *p
	cp.Version++
	cp.UpdatedAt = time.Now()
	s.properties[p.ID] = &cp
	p.Version = cp.Version
	return nil
}

func (s *Store) ListPropertiesByOwner(_ context.Context, ownerID string) ([]property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []property.Property
	for _, p := range s.properties {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Store) ListAvailableProperties(_ context.Context) ([]property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []property.Property
	for _, p := range s.properties {
		if p.Status == property.StatusAvailable {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- Applications ---

func (s *Store) CreateApplication(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = application.StatusPending
	}
	a.Version = 1
	now := time.Now()
	a.SubmittedAt, a.UpdatedAt = now, now
	cp := *a
	s.applications[a.ID] = &cp
	return nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("get application %s: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id string, status application.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return fmt.Errorf("update application status %s: %w", id, domain.ErrNotFound)
	}
	a.Status = status
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

func (s *Store) ApproveApplication(_ context.Context, id, propertyID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("approve application %s: %w", id, domain.ErrNotFound)
	}
	now := time.Now()
	winner.Status = application.StatusApproved
	winner.Version++
	winner.UpdatedAt = now

	var rejected []string
	for _, a := range s.applications {
		if a.ID == id || a.PropertyID != propertyID {
			continue
		}
		if a.Status == application.StatusPending || a.Status == application.StatusUnderReview {
			a.Status = application.StatusRejected
			a.Version++
			a.UpdatedAt = now
			rejected = append(rejected, a.ID)
		}
	}

	if p, ok := s.properties[propertyID]; ok {
		p.Status = property.StatusRented
		p.Version++
		p.UpdatedAt = now
	}
	return rejected, nil
}

func (s *Store) ListApplicationsByProperty(_ context.Context, propertyID string) ([]application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []application.Application
	for _, a := range s.applications {
		if a.PropertyID == propertyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Store) ListApplicationsByApplicant(_ context.Context, applicantID string) ([]application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []application.Application
	for _, a := range s.applications {
		if a.ApplicantID == applicantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Store) HasApprovedApplication(_ context.Context, propertyID, applicantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applications {
		if a.PropertyID == propertyID && a.ApplicantID == applicantID && a.Status == application.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

// --- Maintenance requests ---

func (s *Store) CreateMaintenanceRequest(_ context.Context, m *maintenance.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = maintenance.StatusPending
	}
	m.Version = 1
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	cp := *m
	s.maintenance[m.ID] = &cp
	return nil
}

func (s *Store) GetMaintenanceRequest(_ context.Context, id string) (*maintenance.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maintenance[id]
	if !ok {
		return nil, fmt.Errorf("get maintenance request %s: %w", id, domain.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *Store) UpdateMaintenanceRequest(_ context.Context, m *maintenance.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.maintenance[m.ID]
	if !ok || existing.Version != m.Version {
		return fmt.Errorf("update maintenance request %s: %w", m.ID, domain.ErrConflict)
	}
	cp := *m
	cp.Version++
	cp.UpdatedAt = time.Now()
	s.maintenance[m.ID] = &cp
	m.Version = cp.Version
	return nil
}

func (s *Store) ListMaintenanceByProperty(_ context.Context, propertyID string) ([]maintenance.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []maintenance.MaintenanceRequest
	for _, m := range s.maintenance {
		if m.PropertyID == propertyID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *Store) ListMaintenanceByReporter(_ context.Context, reporterID string) ([]maintenance.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []maintenance.MaintenanceRequest
	for _, m := range s.maintenance {
		if m.ReporterID == reporterID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *Store) ListMaintenanceByOwner(_ context.Context, ownerID string) ([]maintenance.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []maintenance.MaintenanceRequest
	for _, m := range s.maintenance {
		if p, ok := s.properties[m.PropertyID]; ok && p.OwnerID == ownerID {
			out = append(out, *m)
		}
	}
	return out, nil
}
