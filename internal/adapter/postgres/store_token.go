package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
)

// --- Refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, rt *actor.RefreshToken) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO refresh_tokens (actor_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rt.ActorID, rt.TokenHash, rt.ExpiresAt)

	if err := row.Scan(&rt.ID, &rt.CreatedAt); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, hash string) (*actor.RefreshToken, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, actor_id, token_hash, expires_at, created_at
		 FROM refresh_tokens WHERE token_hash = $1`, hash)

	var rt actor.RefreshToken
	if err := row.Scan(&rt.ID, &rt.ActorID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get refresh token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &rt, nil
}

// RotateRefreshToken deletes the old token and inserts the new one in a single
// transaction, so a crashed rotation never leaves both tokens valid.
func (s *Store) RotateRefreshToken(ctx context.Context, oldID string, newRT *actor.RefreshToken) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rotate refresh token: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rotate refresh token: %w", domain.ErrNotFound)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO refresh_tokens (actor_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		newRT.ActorID, newRT.TokenHash, newRT.ExpiresAt)
	if err := row.Scan(&newRT.ID, &newRT.CreatedAt); err != nil {
		return fmt.Errorf("rotate refresh token: insert: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteRefreshTokensByActor(ctx context.Context, actorID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE actor_id = $1`, actorID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens for %s: %w", actorID, err)
	}
	return nil
}

// --- Revocation ---

func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		 ON CONFLICT (jti) DO NOTHING`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return exists, nil
}

func (s *Store) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
