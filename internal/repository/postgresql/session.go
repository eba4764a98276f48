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

type sessionRepository struct {
	db *database.DB
}

// Create implements geofence.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, session geofence.Session) (geofence.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_sessions (
			id, geofence_id, employee_id, entry_event_id, exit_event_id,
			entry_time, exit_time, duration_minutes, is_active, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		session.ID, session.GeofenceID, session.EmployeeID, session.EntryEventID, session.ExitEventID,
		session.EntryTime, session.ExitTime, session.DurationMinutes, session.IsActive, session.Notes,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return geofence.Session{}, fmt.Errorf("failed to create geofence session: %w", err)
	}

	return session, nil
}

// GetOpen implements geofence.SessionRepository.
func (r *sessionRepository) GetOpen(ctx context.Context, employeeID, geofenceID string) (*geofence.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, geofence_id, employee_id, entry_event_id, exit_event_id,
			entry_time, exit_time, duration_minutes, is_active, notes, created_at, updated_at
		FROM geofence_sessions
		WHERE employee_id = $1 AND geofence_id = $2 AND is_active = TRUE
	`

	var s geofence.Session
	err := q.QueryRow(ctx, query, employeeID, geofenceID).Scan(
		&s.ID, &s.GeofenceID, &s.EmployeeID, &s.EntryEventID, &s.ExitEventID,
		&s.EntryTime, &s.ExitTime, &s.DurationMinutes, &s.IsActive, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return &s, nil
}

// UpdateEntry implements geofence.SessionRepository.
func (r *sessionRepository) UpdateEntry(ctx context.Context, sessionID string, entryEventID string, entryTime time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE geofence_sessions
		SET entry_event_id = $2, entry_time = $3, updated_at = $4
		WHERE id = $1 AND is_active = TRUE
	`

	commandTag, err := q.Exec(ctx, query, sessionID, entryEventID, entryTime, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update session entry: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return geofence.ErrSessionNotFound
	}

	return nil
}

// Close implements geofence.SessionRepository.
func (r *sessionRepository) Close(ctx context.Context, sessionID string, exitEventID string, exitTime time.Time, durationMinutes int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE geofence_sessions
		SET exit_event_id = $2, exit_time = $3, duration_minutes = $4,
			is_active = FALSE, updated_at = $5
		WHERE id = $1 AND is_active = TRUE
	`

	commandTag, err := q.Exec(ctx, query, sessionID, exitEventID, exitTime, durationMinutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return geofence.ErrSessionNotFound
	}

	return nil
}

// CloseAdministratively implements geofence.SessionRepository.
func (r *sessionRepository) CloseAdministratively(ctx context.Context, sessionID string, exitTime time.Time, durationMinutes int, notes string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE geofence_sessions
		SET exit_time = $2, duration_minutes = $3, notes = $4,
			is_active = FALSE, updated_at = $5
		WHERE id = $1 AND is_active = TRUE
	`

	commandTag, err := q.Exec(ctx, query, sessionID, exitTime, durationMinutes, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to close session administratively: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return geofence.ErrSessionNotFound
	}

	return nil
}

// ListOpenByGeofence implements geofence.SessionRepository.
func (r *sessionRepository) ListOpenByGeofence(ctx context.Context, geofenceID string) ([]geofence.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.geofence_id, s.employee_id, s.entry_event_id, s.exit_event_id,
			s.entry_time, s.exit_time, s.duration_minutes, s.is_active, s.notes,
			s.created_at, s.updated_at, e.full_name
		FROM geofence_sessions s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE s.geofence_id = $1 AND s.is_active = TRUE
		ORDER BY s.entry_time
	`

	rows, err := q.Query(ctx, query, geofenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []geofence.Session
	for rows.Next() {
		var s geofence.Session
		if err := rows.Scan(
			&s.ID, &s.GeofenceID, &s.EmployeeID, &s.EntryEventID, &s.ExitEventID,
			&s.EntryTime, &s.ExitTime, &s.DurationMinutes, &s.IsActive, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt, &s.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}

// ListByGeofence implements geofence.SessionRepository.
func (r *sessionRepository) ListByGeofence(ctx context.Context, geofenceID string, filter geofence.SessionFilter) ([]geofence.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"s.geofence_id = $1"}
	args := []interface{}{geofenceID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("s.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "s.is_active = TRUE")
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("s.entry_time >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("s.entry_time < $%d::date + INTERVAL '1 day'", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM geofence_sessions s WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `
		SELECT s.id, s.geofence_id, s.employee_id, s.entry_event_id, s.exit_event_id,
			s.entry_time, s.exit_time, s.duration_minutes, s.is_active, s.notes,
			s.created_at, s.updated_at, e.full_name
		FROM geofence_sessions s
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE ` + where + fmt.Sprintf(`
		ORDER BY s.entry_time DESC
		LIMIT $%d OFFSET $%d
	`, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []geofence.Session
	for rows.Next() {
		var s geofence.Session
		if err := rows.Scan(
			&s.ID, &s.GeofenceID, &s.EmployeeID, &s.EntryEventID, &s.ExitEventID,
			&s.EntryTime, &s.ExitTime, &s.DurationMinutes, &s.IsActive, &s.Notes,
			&s.CreatedAt, &s.UpdatedAt, &s.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, total, nil
}

// TotalDurationMinutes implements geofence.SessionRepository.
func (r *sessionRepository) TotalDurationMinutes(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM geofence_sessions
		WHERE employee_id = $1 AND geofence_id = $2
			AND is_active = FALSE
			AND entry_time >= $3 AND entry_time <= $4
	`

	var total int
	if err := q.QueryRow(ctx, query, employeeID, geofenceID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum session durations: %w", err)
	}

	return total, nil
}

// VisitCount implements geofence.SessionRepository.
func (r *sessionRepository) VisitCount(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM geofence_sessions
		WHERE employee_id = $1 AND geofence_id = $2
			AND entry_time >= $3 AND entry_time <= $4
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, geofenceID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}

	return count, nil
}

func NewSessionRepository(db *database.DB) geofence.SessionRepository {
	return &sessionRepository{db: db}
}
