package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geofenceRepository struct {
	db *database.DB
}

const geofenceColumns = `
	id, name, type, description, color, center_lat, center_lng, radius_m,
	department_id, is_active, notify_on_entry, notify_on_exit,
	attendance_start_time, attendance_required_minutes,
	created_at, updated_at
`

func scanGeofence(row pgx.Row, g *geofence.Geofence) error {
	return row.Scan(
		&g.ID, &g.Name, &g.Type, &g.Description, &g.Color, &g.CenterLat, &g.CenterLng, &g.RadiusM,
		&g.DepartmentID, &g.IsActive, &g.NotifyOnEntry, &g.NotifyOnExit,
		&g.AttendanceStartTime, &g.AttendanceRequiredMinutes,
		&g.CreatedAt, &g.UpdatedAt,
	)
}

// Create implements geofence.GeofenceRepository.
func (r *geofenceRepository) Create(ctx context.Context, g geofence.Geofence) (geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofences (
			id, name, type, description, color, center_lat, center_lng, radius_m,
			department_id, is_active, notify_on_entry, notify_on_exit,
			attendance_start_time, attendance_required_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		g.ID, g.Name, g.Type, g.Description, g.Color, g.CenterLat, g.CenterLng, g.RadiusM,
		g.DepartmentID, g.IsActive, g.NotifyOnEntry, g.NotifyOnExit,
		g.AttendanceStartTime, g.AttendanceRequiredMinutes,
	).Scan(&g.CreatedAt, &g.UpdatedAt)

	if err != nil {
		return geofence.Geofence{}, fmt.Errorf("failed to create geofence: %w", err)
	}

	return g, nil
}

// GetByID implements geofence.GeofenceRepository.
func (r *geofenceRepository) GetByID(ctx context.Context, id string) (geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE id = $1`

	var g geofence.Geofence
	if err := scanGeofence(q.QueryRow(ctx, query, id), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.Geofence{}, geofence.ErrGeofenceNotFound
		}
		return geofence.Geofence{}, fmt.Errorf("failed to get geofence by ID: %w", err)
	}

	assigned, err := r.loadAssignments(ctx, []string{g.ID})
	if err != nil {
		return geofence.Geofence{}, err
	}
	g.AssignedEmployeeIDs = assigned[g.ID]

	return g, nil
}

// List implements geofence.GeofenceRepository.
func (r *geofenceRepository) List(ctx context.Context, includeInactive bool) ([]geofence.Geofence, error) {
	where := "is_active = TRUE"
	if includeInactive {
		where = "TRUE"
	}
	return r.list(ctx, where)
}

// ListActive implements geofence.GeofenceRepository.
func (r *geofenceRepository) ListActive(ctx context.Context) ([]geofence.Geofence, error) {
	return r.list(ctx, "is_active = TRUE")
}

func (r *geofenceRepository) list(ctx context.Context, where string) ([]geofence.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE ` + where + ` ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query geofences: %w", err)
	}
	defer rows.Close()

	var geofences []geofence.Geofence
	var ids []string
	for rows.Next() {
		var g geofence.Geofence
		if err := scanGeofence(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan geofence: %w", err)
		}
		geofences = append(geofences, g)
		ids = append(ids, g.ID)
	}

	if len(ids) == 0 {
		return geofences, nil
	}

	assigned, err := r.loadAssignments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range geofences {
		geofences[i].AssignedEmployeeIDs = assigned[geofences[i].ID]
	}

	return geofences, nil
}

func (r *geofenceRepository) loadAssignments(ctx context.Context, geofenceIDs []string) (map[string][]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT geofence_id, employee_id
		FROM geofence_employee_assignments
		WHERE geofence_id = ANY($1)
	`

	rows, err := q.Query(ctx, query, geofenceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query geofence assignments: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var geofenceID, employeeID string
		if err := rows.Scan(&geofenceID, &employeeID); err != nil {
			return nil, fmt.Errorf("failed to scan geofence assignment: %w", err)
		}
		result[geofenceID] = append(result[geofenceID], employeeID)
	}

	return result, nil
}

// Update implements geofence.GeofenceRepository.
func (r *geofenceRepository) Update(ctx context.Context, req geofence.UpdateGeofenceRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Type != nil {
		updates = append(updates, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *req.Type)
		argIdx++
	}
	if req.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *req.Description)
		argIdx++
	}
	if req.Color != nil {
		updates = append(updates, fmt.Sprintf("color = $%d", argIdx))
		args = append(args, *req.Color)
		argIdx++
	}
	if req.CenterLat != nil {
		updates = append(updates, fmt.Sprintf("center_lat = $%d", argIdx))
		args = append(args, *req.CenterLat)
		argIdx++
	}
	if req.CenterLng != nil {
		updates = append(updates, fmt.Sprintf("center_lng = $%d", argIdx))
		args = append(args, *req.CenterLng)
		argIdx++
	}
	if req.RadiusM != nil {
		updates = append(updates, fmt.Sprintf("radius_m = $%d", argIdx))
		args = append(args, *req.RadiusM)
		argIdx++
	}
	if req.DepartmentID != nil {
		updates = append(updates, fmt.Sprintf("department_id = $%d", argIdx))
		args = append(args, *req.DepartmentID)
		argIdx++
	}
	if req.NotifyOnEntry != nil {
		updates = append(updates, fmt.Sprintf("notify_on_entry = $%d", argIdx))
		args = append(args, *req.NotifyOnEntry)
		argIdx++
	}
	if req.NotifyOnExit != nil {
		updates = append(updates, fmt.Sprintf("notify_on_exit = $%d", argIdx))
		args = append(args, *req.NotifyOnExit)
		argIdx++
	}
	if req.AttendanceStartTime != nil {
		updates = append(updates, fmt.Sprintf("attendance_start_time = $%d", argIdx))
		args = append(args, *req.AttendanceStartTime)
		argIdx++
	}
	if req.AttendanceRequiredMinutes != nil {
		updates = append(updates, fmt.Sprintf("attendance_required_minutes = $%d", argIdx))
		args = append(args, *req.AttendanceRequiredMinutes)
		argIdx++
	}

	if len(updates) == 0 {
		return fmt.Errorf("no updatable fields provided for geofence update")
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now().UTC())
	argIdx++

	args = append(args, req.ID)

	query := "UPDATE geofences SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING id", argIdx)

	var updatedID string
	if err := q.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geofence.ErrGeofenceNotFound
		}
		return fmt.Errorf("failed to update geofence: %w", err)
	}

	return nil
}

// SoftDelete implements geofence.GeofenceRepository.
func (r *geofenceRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE geofences SET is_active = FALSE, updated_at = $2 WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to soft-delete geofence: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return geofence.ErrGeofenceNotFound
	}

	return nil
}

func NewGeofenceRepository(db *database.DB) geofence.GeofenceRepository {
	return &geofenceRepository{db: db}
}
