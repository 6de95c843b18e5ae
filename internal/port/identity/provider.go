// Package identity defines the identity provider port.
package identity

import (
	"context"

	"github.com/openlease/openlease/internal/domain/actor"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Provider verifies credentials and resolves them to an actor. Implementations
// return domain.ErrInvalidCredentials for a bad pair and
// domain.ErrProviderUnavailable when the backing service cannot be reached.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (*actor.Actor, error)
}
