package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/domain/authz"
	"github.com/openlease/openlease/internal/port/cache"
	"github.com/openlease/openlease/internal/port/database"
	"github.com/openlease/openlease/internal/port/eventbus"
	"github.com/openlease/openlease/internal/port/identity"
	"github.com/openlease/openlease/internal/resilience"
)

const (
	tokenAudience = "openlease"
	tokenIssuer   = "openlease-core"

	// SubjectSessionRevoked carries out-of-band session invalidations from
	// the identity provider (one JTI per message).
	SubjectSessionRevoked = "sessions.revoked"
)

// SessionService is the session manager: it owns authentication, token
// lifecycle, and the role-based authorization check every other service
// consults before mutating shared entities.
type SessionService struct {
	store      database.Store
	idp        identity.Provider
	idpBreaker *resilience.Breaker
	cache      cache.Cache
	cfg        *config.Auth
	secret     []byte
}

// NewSessionService creates a new session manager. Identity provider calls go
// through a circuit breaker; only provider outages count against it, rejected
// credentials pass through.
func NewSessionService(store database.Store, idp identity.Provider, c cache.Cache, cfg *config.Auth) *SessionService {
	return &SessionService{
		store: store,
		idp:   idp,
		idpBreaker: resilience.NewBreaker(5, 30*time.Second, func(err error) bool {
			return errors.Is(err, domain.ErrProviderUnavailable)
		}),
		cache:  c,
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
	}
}

// Register creates a new actor with a bcrypt-hashed password. The role chosen
// here is permanent; profile updates never change it.
func (s *SessionService) Register(ctx context.Context, req *actor.CreateRequest) (*actor.Actor, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &actor.Actor{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        req.Phone,
		Enabled:      true,
	}

	if err := s.store.CreateActor(ctx, a); err != nil {
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return a, nil
}

// AdminResetPassword sets a new password for the actor with the given email.
// Existing sessions are ended: all refresh tokens are deleted.
func (s *SessionService) AdminResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrValidation)
	}

	a, err := s.store.GetActorByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get actor: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	a.PasswordHash = string(hash)
	if err := s.store.UpdateActor(ctx, a); err != nil {
		return fmt.Errorf("update actor: %w", err)
	}
	return s.store.DeleteRefreshTokensByActor(ctx, a.ID)
}

// ListActors returns every registered actor.
func (s *SessionService) ListActors(ctx context.Context) ([]actor.Actor, error) {
	return s.store.ListActors(ctx)
}

// Login authenticates credentials via the identity provider and establishes a
// session: an access token plus a rotating refresh token.
func (s *SessionService) Login(ctx context.Context, req actor.LoginRequest) (*actor.LoginResponse, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	var a *actor.Actor
	err := s.idpBreaker.Execute(func() error {
		var authErr error
		a, authErr = s.idp.Authenticate(ctx, identity.Credentials{Email: req.Email, Password: req.Password})
		return authErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, "", fmt.Errorf("%w: identity provider circuit open", domain.ErrProviderUnavailable)
		}
		return nil, "", err
	}

	accessToken, err := s.signJWT(a)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	rawToken, err := generateRandomToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}

	rt := &actor.RefreshToken{
		ActorID:   a.ID,
		TokenHash: hashSHA256(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
	}
	if err := s.store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	resp := &actor.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		Actor:       *a,
	}
	return resp, rawToken, nil
}

// Refresh validates a refresh token, atomically rotates it, and issues a new
// access token.
func (s *SessionService) Refresh(ctx context.Context, rawToken string) (*actor.LoginResponse, string, error) {
	rt, err := s.store.GetRefreshTokenByHash(ctx, hashSHA256(rawToken))
	if err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.store.DeleteRefreshToken(ctx, rt.ID)
		return nil, "", domain.ErrInvalidCredentials
	}

	a, err := s.store.GetActor(ctx, rt.ActorID)
	if err != nil {
		return nil, "", fmt.Errorf("get actor: %w", err)
	}
	if !a.Enabled {
		return nil, "", domain.ErrInvalidCredentials
	}

	accessToken, err := s.signJWT(a)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	newRawToken, err := generateRandomToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}

	newRT := &actor.RefreshToken{
		ActorID:   a.ID,
		TokenHash: hashSHA256(newRawToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
	}
	if err := s.store.RotateRefreshToken(ctx, rt.ID, newRT); err != nil {
		return nil, "", fmt.Errorf("rotate refresh token: %w", err)
	}

	resp := &actor.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		Actor:       *a,
	}
	return resp, newRawToken, nil
}

// Logout revokes the current access token by JTI and deletes the actor's
// refresh tokens. Idempotent: logging out an already-ended session is a no-op.
func (s *SessionService) Logout(ctx context.Context, actorID, jti string, tokenExpiry time.Time) error {
	if jti != "" {
		if err := s.store.RevokeToken(ctx, jti, tokenExpiry); err != nil {
			slog.Warn("failed to revoke access token on logout", "jti", jti, "error", err)
		}
		_ = s.cache.Delete(ctx, revocationCacheKey(jti))
	}
	return s.store.DeleteRefreshTokensByActor(ctx, actorID)
}

// CurrentActor verifies an access token and returns the session's actor.
// It checks revocation fail-closed: when the revocation store is unreachable
// the token is rejected.
func (s *SessionService) CurrentActor(ctx context.Context, tokenStr string) (*actor.Actor, *actor.TokenClaims, error) {
	claims, err := s.verifyJWT(tokenStr)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.isRevoked(ctx, claims.JTI)
	if err != nil {
		slog.Error("token revocation check failed, denying token", "jti", claims.JTI, "error", err)
		return nil, nil, fmt.Errorf("%w: unable to verify token status", domain.ErrProviderUnavailable)
	}
	if revoked {
		return nil, nil, fmt.Errorf("%w: token has been revoked", domain.ErrInvalidCredentials)
	}

	a := &actor.Actor{
		ID:          claims.ActorID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
		Enabled:     true,
	}
	return a, claims, nil
}

// Authorize is the deterministic role check from the policy table. Ownership
// ("own property only") is enforced by the lifecycle and property services
// next to the entity fetch.
func (s *SessionService) Authorize(a *actor.Actor, action authz.Action) bool {
	if a == nil {
		return false
	}
	return authz.Allow(a.Role, action)
}

// StartInvalidationSubscriber reacts to out-of-band session invalidation
// signaled by the identity provider: each message carries a JTI to revoke.
func (s *SessionService) StartInvalidationSubscriber(ctx context.Context, bus eventbus.Bus) (func(), error) {
	return bus.Subscribe(ctx, SubjectSessionRevoked, func(_ string, data []byte) error {
		jti := strings.TrimSpace(string(data))
		if jti == "" {
			return nil
		}
		// Tokens carry their own expiry; keeping the revocation row for the
		// max access-token lifetime is enough.
		if err := s.store.RevokeToken(ctx, jti, time.Now().Add(s.cfg.AccessTokenExpiry)); err != nil {
			return fmt.Errorf("revoke session %s: %w", jti, err)
		}
		_ = s.cache.Delete(ctx, revocationCacheKey(jti))
		slog.Info("session invalidated by provider", "jti", jti)
		return nil
	})
}

// StartTokenCleanup starts a background goroutine that periodically purges
// expired revoked tokens. It stops when ctx is cancelled.
func (s *SessionService) StartTokenCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.store.PurgeExpiredTokens(ctx)
				if err != nil {
					slog.Warn("failed to purge expired tokens", "error", err)
				} else if n > 0 {
					slog.Info("purged expired revoked tokens", "count", n)
				}
			}
		}
	}()
}

// isRevoked checks the revocation list with a short-lived negative cache so
// every request does not hit the store.
func (s *SessionService) isRevoked(ctx context.Context, jti string) (bool, error) {
	key := revocationCacheKey(jti)
	if val, ok, _ := s.cache.Get(ctx, key); ok {
		return string(val) == "1", nil
	}

	revoked, err := s.store.IsTokenRevoked(ctx, jti)
	if err != nil {
		return false, err
	}

	val := []byte("0")
	if revoked {
		val = []byte("1")
	}
	_ = s.cache.Set(ctx, key, val, time.Minute)
	return revoked, nil
}

func revocationCacheKey(jti string) string {
	return "revoked:" + jti
}

// --- JWT implementation (HS256 with stdlib) ---

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *SessionService) signJWT(a *actor.Actor) (string, error) {
	now := time.Now()
	claims := actor.TokenClaims{
		ActorID:     a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		IssuedAt:    now.Unix(),
		Expiry:      now.Add(s.cfg.AccessTokenExpiry).Unix(),
		JTI:         uuid.NewString(),
		Audience:    tokenAudience,
		Issuer:      tokenIssuer,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	payloadB64 := base64URLEncode(payload)
	signingInput := jwtHeader + "." + payloadB64

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

func (s *SessionService) verifyJWT(tokenStr string) (*actor.TokenClaims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrInvalidCredentials)
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, fmt.Errorf("%w: invalid signature", domain.ErrInvalidCredentials)
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload", domain.ErrInvalidCredentials)
	}

	var claims actor.TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: unmarshal claims", domain.ErrInvalidCredentials)
	}

	if time.Now().Unix() > claims.Expiry {
		return nil, fmt.Errorf("%w: token expired", domain.ErrInvalidCredentials)
	}
	if claims.Audience != tokenAudience {
		return nil, fmt.Errorf("%w: invalid token audience", domain.ErrInvalidCredentials)
	}
	if claims.Issuer != tokenIssuer {
		return nil, fmt.Errorf("%w: invalid token issuer", domain.ErrInvalidCredentials)
	}

	return &claims, nil
}

// --- Helpers ---

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	// Add padding back
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
