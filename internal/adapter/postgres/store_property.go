package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/property"
)

const propertyColumns = `id, owner_id, address, bedrooms, bathrooms, monthly_rent, status, version, created_at, updated_at`

func (s *Store) CreateProperty(ctx context.Context, p *property.Property) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO properties (owner_id, address, bedrooms, bathrooms, monthly_rent, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, version, created_at, updated_at`,
		p.OwnerID, p.Address, p.Bedrooms, p.Bathrooms, p.MonthlyRent, string(p.Status))

	if err := row.Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)

	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get property %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get property %s: %w", id, err)
	}
	return p, nil
}

// UpdateProperty writes all mutable fields guarded by the optimistic version
// check. On success the in-memory version is bumped to match the row.
func (s *Store) UpdateProperty(ctx context.Context, p *property.Property) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE properties
		 SET address = $2, bedrooms = $3, bathrooms = $4, monthly_rent = $5, status = $6,
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $7`,
		p.ID, p.Address, p.Bedrooms, p.Bathrooms, p.MonthlyRent, string(p.Status), p.Version)
	if err != nil {
		return fmt.Errorf("update property %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update property %s: %w", p.ID, domain.ErrConflict)
	}
	p.Version++
	return nil
}

func (s *Store) ListPropertiesByOwner(ctx context.Context, ownerID string) ([]property.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list properties by owner: %w", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (s *Store) ListAvailableProperties(ctx context.Context) ([]property.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE status = 'available' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list available properties: %w", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

func collectProperties(rows pgx.Rows) ([]property.Property, error) {
	var props []property.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	return props, rows.Err()
}

func scanProperty(row pgx.Row) (*property.Property, error) {
	var p property.Property
	var status string
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Address, &p.Bedrooms, &p.Bathrooms,
		&p.MonthlyRent, &status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = property.OccupancyStatus(status)
	return &p, nil
}
