// Package localidp implements the identity provider port against the local
// actor store with bcrypt password verification.
package localidp

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/port/database"
	"github.com/openlease/openlease/internal/port/identity"
)

// Provider verifies credentials against the actor store.
type Provider struct {
	store database.Store
}

// New creates a local identity provider.
func New(store database.Store) *Provider {
	return &Provider{store: store}
}

// Authenticate resolves credentials to an actor. A missing actor and a wrong
// password are indistinguishable to the caller; store failures surface as
// ErrProviderUnavailable so the UI can distinguish retry-later from re-enter.
func (p *Provider) Authenticate(ctx context.Context, creds identity.Credentials) (*actor.Actor, error) {
	a, err := p.store.GetActorByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}

	if !a.Enabled {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return a, nil
}
