// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates malformed numeric or enum input, rejected before any
// state mutation is attempted.
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates a role or ownership check failed. Surfaced to the
// caller as a permission denial and never retried automatically.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidTransition indicates the requested status is not reachable from
// the entity's current status.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidCredentials indicates authentication failed due to a bad
// email/password pair. Recoverable by re-authenticating.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrProviderUnavailable indicates the identity backend could not be reached.
var ErrProviderUnavailable = errors.New("identity provider unavailable")
