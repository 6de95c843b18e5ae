// Package actor defines the actor domain model for authentication and authorization.
package actor

import (
	"errors"
	"net/mail"
	"time"
)

// Role represents the marketplace role of an actor. It is immutable for the
// lifetime of the account; changing role requires a new registration.
type Role string

const (
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// ValidRoles is the set of all valid actor roles.
var ValidRoles = map[Role]bool{
	RoleLandlord: true,
	RoleTenant:   true,
}

// Actor represents a registered user of the marketplace.
type Actor struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"` // never serialized
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the input for registering a new actor.
type CreateRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	Role        Role   `json:"role"`
	Phone       string `json:"phone,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("invalid email format")
	}
	if r.DisplayName == "" {
		return errors.New("display name is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !ValidRoles[r.Role] {
		return errors.New("invalid role: must be landlord or tenant")
	}
	return nil
}

// UpdateRequest is the merge-update input for profile fields. Role is
// deliberately absent: it is read-only after creation.
type UpdateRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// LoginRequest is the input for actor authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // response field, not a hardcoded secret
	ExpiresIn   int    `json:"expires_in"`   // seconds until access token expires
	Actor       Actor  `json:"actor"`
}

// TokenClaims contains the JWT payload fields.
type TokenClaims struct {
	ActorID     string `json:"sub"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
	IssuedAt    int64  `json:"iat"`
	Expiry      int64  `json:"exp"`
	JTI         string `json:"jti"`
	Audience    string `json:"aud"`
	Issuer      string `json:"iss"`
}

// RefreshToken represents a stored refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
