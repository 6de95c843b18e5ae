package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/actor"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Actors ---

func (s *Store) CreateActor(ctx context.Context, a *actor.Actor) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO actors (email, display_name, password_hash, role, phone, bio, enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.DisplayName, a.PasswordHash, string(a.Role), a.Phone, a.Bio, a.Enabled)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("create actor: %w", err)
	}
	return nil
}

func (s *Store) GetActor(ctx context.Context, id string) (*actor.Actor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, role, phone, bio, enabled, created_at, updated_at
		 FROM actors WHERE id = $1`, id)

	a, err := scanActor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get actor %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get actor %s: %w", id, err)
	}
	return a, nil
}

func (s *Store) GetActorByEmail(ctx context.Context, email string) (*actor.Actor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, role, phone, bio, enabled, created_at, updated_at
		 FROM actors WHERE email = $1`, email)

	a, err := scanActor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get actor by email: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get actor by email: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateActor(ctx context.Context, a *actor.Actor) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE actors SET display_name = $2, password_hash = $3, phone = $4, bio = $5, enabled = $6, updated_at = now()
		 WHERE id = $1`,
		a.ID, a.DisplayName, a.PasswordHash, a.Phone, a.Bio, a.Enabled)
	if err != nil {
		return fmt.Errorf("update actor %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update actor %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListActors(ctx context.Context) ([]actor.Actor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, display_name, password_hash, role, phone, bio, enabled, created_at, updated_at
		 FROM actors ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []actor.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, *a)
	}
	return actors, rows.Err()
}

func scanActor(row pgx.Row) (*actor.Actor, error) {
	var a actor.Actor
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &role,
		&a.Phone, &a.Bio, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Role = actor.Role(role)
	return &a, nil
}
