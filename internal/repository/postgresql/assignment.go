package postgresql

import (
	"context"
	"fmt"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/google/uuid"
)

type assignmentRepository struct {
	db *database.DB
}

// Assign implements geofence.AssignmentRepository.
func (r *assignmentRepository) Assign(ctx context.Context, geofenceID string, employeeIDs []string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_employee_assignments (id, geofence_id, employee_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (geofence_id, employee_id) DO NOTHING
	`

	for _, employeeID := range employeeIDs {
		if _, err := q.Exec(ctx, query, uuid.New().String(), geofenceID, employeeID); err != nil {
			return fmt.Errorf("failed to assign employee to geofence: %w", err)
		}
	}

	return nil
}

// Unassign implements geofence.AssignmentRepository.
func (r *assignmentRepository) Unassign(ctx context.Context, geofenceID string, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM geofence_employee_assignments
		WHERE geofence_id = $1 AND employee_id = $2
	`

	if _, err := q.Exec(ctx, query, geofenceID, employeeID); err != nil {
		return fmt.Errorf("failed to unassign employee from geofence: %w", err)
	}

	return nil
}

// ListByGeofence implements geofence.AssignmentRepository.
func (r *assignmentRepository) ListByGeofence(ctx context.Context, geofenceID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id
		FROM geofence_employee_assignments
		WHERE geofence_id = $1
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, geofenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query geofence assignments: %w", err)
	}
	defer rows.Close()

	var employeeIDs []string
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return nil, fmt.Errorf("failed to scan geofence assignment: %w", err)
		}
		employeeIDs = append(employeeIDs, employeeID)
	}

	return employeeIDs, nil
}

func NewAssignmentRepository(db *database.DB) geofence.AssignmentRepository {
	return &assignmentRepository{db: db}
}
