package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/application"
)

const applicationColumns = `id, property_id, applicant_id, status, message, submitted_at, version, updated_at`

func (s *Store) CreateApplication(ctx context.Context, a *application.Application) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO applications (property_id, applicant_id, status, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, submitted_at, version, updated_at`,
		a.PropertyID, a.ApplicantID, string(a.Status), a.Message)

	if err := row.Scan(&a.ID, &a.SubmittedAt, &a.Version, &a.UpdatedAt); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*application.Application, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)

	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get application %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}
	return a, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status application.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE applications SET status = $2, version = version + 1, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update application status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update application status %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ApproveApplication runs the full approval cascade in one transaction: the
// winning application becomes approved, every sibling still in pending or
// under_review becomes rejected, and the property is marked rented. If any
// step fails, nothing is applied.
func (s *Store) ApproveApplication(ctx context.Context, id, propertyID string) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve application: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE applications SET status = 'approved', version = version + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("approve application %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("approve application %s: %w", id, domain.ErrNotFound)
	}

	rows, err := tx.Query(ctx,
		`UPDATE applications SET status = 'rejected', version = version + 1, updated_at = now()
		 WHERE property_id = $1 AND id <> $2 AND status IN ('pending', 'under_review')
		 RETURNING id`, propertyID, id)
	if err != nil {
		return nil, fmt.Errorf("reject siblings for %s: %w", propertyID, err)
	}
	var rejected []string
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reject siblings for %s: %w", propertyID, err)
		}
		rejected = append(rejected, rid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reject siblings for %s: %w", propertyID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE properties SET status = 'rented', version = version + 1, updated_at = now() WHERE id = $1`,
		propertyID); err != nil {
		return nil, fmt.Errorf("mark property rented %s: %w", propertyID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("approve application: commit: %w", err)
	}
	return rejected, nil
}

func (s *Store) ListApplicationsByProperty(ctx context.Context, propertyID string) ([]application.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE property_id = $1 ORDER BY submitted_at`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list applications by property: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Store) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]application.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = $1 ORDER BY submitted_at DESC`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list applications by applicant: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Store) HasApprovedApplication(ctx context.Context, propertyID, applicantID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications
		  WHERE property_id = $1 AND applicant_id = $2 AND status = 'approved')`,
		propertyID, applicantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved application: %w", err)
	}
	return exists, nil
}

func collectApplications(rows pgx.Rows) ([]application.Application, error) {
	var apps []application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var a application.Application
	var status string
	if err := row.Scan(&a.ID, &a.PropertyID, &a.ApplicantID, &status, &a.Message,
		&a.SubmittedAt, &a.Version, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = application.Status(status)
	return &a, nil
}
