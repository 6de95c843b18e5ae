package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openlease/openlease/internal/domain"
	"github.com/openlease/openlease/internal/domain/maintenance"
)

const maintenanceColumns = `id, property_id, reporter_id, category, priority, status, title, details,
	contractor, actual_cost, completed_at, version, created_at, updated_at`

func (s *Store) CreateMaintenanceRequest(ctx context.Context, m *maintenance.MaintenanceRequest) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO maintenance_requests (property_id, reporter_id, category, priority, status, title, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, version, created_at, updated_at`,
		m.PropertyID, m.ReporterID, string(m.Category), string(m.Priority), string(m.Status), m.Title, m.Details)

	if err := row.Scan(&m.ID, &m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

func (s *Store) GetMaintenanceRequest(ctx context.Context, id string) (*maintenance.MaintenanceRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id)

	m, err := scanMaintenance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get maintenance request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get maintenance request %s: %w", id, err)
	}
	return m, nil
}

// UpdateMaintenanceRequest writes status, contractor, cost, and completion
// timestamp guarded by the optimistic version check.
func (s *Store) UpdateMaintenanceRequest(ctx context.Context, m *maintenance.MaintenanceRequest) error {
	var contractorJSON []byte
	if m.Contractor != nil {
		var err error
		contractorJSON, err = json.Marshal(m.Contractor)
		if err != nil {
			return fmt.Errorf("marshal contractor: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE maintenance_requests
		 SET status = $2, contractor = $3, actual_cost = $4, completed_at = $5,
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $6`,
		m.ID, string(m.Status), contractorJSON, m.ActualCost, m.CompletedAt, m.Version)
	if err != nil {
		return fmt.Errorf("update maintenance request %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update maintenance request %s: %w", m.ID, domain.ErrConflict)
	}
	m.Version++
	return nil
}

func (s *Store) ListMaintenanceByProperty(ctx context.Context, propertyID string) ([]maintenance.MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE property_id = $1 ORDER BY created_at DESC`,
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance by property: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func (s *Store) ListMaintenanceByReporter(ctx context.Context, reporterID string) ([]maintenance.MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE reporter_id = $1 ORDER BY created_at DESC`,
		reporterID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance by reporter: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func (s *Store) ListMaintenanceByOwner(ctx context.Context, ownerID string) ([]maintenance.MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.property_id, m.reporter_id, m.category, m.priority, m.status, m.title, m.details,
		        m.contractor, m.actual_cost, m.completed_at, m.version, m.created_at, m.updated_at
		 FROM maintenance_requests m
		 JOIN properties p ON p.id = m.property_id
		 WHERE p.owner_id = $1 ORDER BY m.created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance by owner: %w", err)
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func collectMaintenance(rows pgx.Rows) ([]maintenance.MaintenanceRequest, error) {
	var reqs []maintenance.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *m)
	}
	return reqs, rows.Err()
}

func scanMaintenance(row pgx.Row) (*maintenance.MaintenanceRequest, error) {
	var m maintenance.MaintenanceRequest
	var category, priority, status string
	var contractorJSON []byte
	if err := row.Scan(&m.ID, &m.PropertyID, &m.ReporterID, &category, &priority, &status,
		&m.Title, &m.Details, &contractorJSON, &m.ActualCost, &m.CompletedAt,
		&m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Category = maintenance.Category(category)
	m.Priority = maintenance.Priority(priority)
	m.Status = maintenance.Status(status)
	if len(contractorJSON) > 0 {
		var c maintenance.Contractor
		if err := json.Unmarshal(contractorJSON, &c); err != nil {
			return nil, fmt.Errorf("unmarshal contractor: %w", err)
		}
		m.Contractor = &c
	}
	return &m, nil
}
