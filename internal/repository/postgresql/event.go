package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
)

type eventRepository struct {
	db *database.DB
}

// Create implements geofence.EventRepository.
func (r *eventRepository) Create(ctx context.Context, event geofence.Event) (geofence.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_events (
			id, geofence_id, employee_id, event_type, recorded_at,
			location_lat, location_lng, distance_from_center_m, notes, attendance_ref
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID, event.GeofenceID, event.EmployeeID, event.EventType, event.RecordedAt,
		event.LocationLat, event.LocationLng, event.DistanceFromCenterM, event.Notes, event.AttendanceRef,
	).Scan(&event.CreatedAt)

	if err != nil {
		return geofence.Event{}, fmt.Errorf("failed to create geofence event: %w", err)
	}

	return event, nil
}

// ListByGeofence implements geofence.EventRepository.
func (r *eventRepository) ListByGeofence(ctx context.Context, geofenceID string, filter geofence.EventFilter) ([]geofence.Event, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"geofence_id = $1"}
	args := []interface{}{geofenceID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.EventType != nil && *filter.EventType != "" {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIdx))
		args = append(args, strings.ToLower(*filter.EventType))
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("recorded_at < $%d::date + INTERVAL '1 day'", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM geofence_events WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count geofence events: %w", err)
	}

	query := `
		SELECT id, geofence_id, employee_id, event_type, recorded_at,
			location_lat, location_lng, distance_from_center_m, notes, attendance_ref, created_at
		FROM geofence_events
		WHERE ` + where + fmt.Sprintf(`
		ORDER BY recorded_at DESC
		LIMIT $%d OFFSET $%d
	`, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query geofence events: %w", err)
	}
	defer rows.Close()

	var events []geofence.Event
	for rows.Next() {
		var e geofence.Event
		if err := rows.Scan(
			&e.ID, &e.GeofenceID, &e.EmployeeID, &e.EventType, &e.RecordedAt,
			&e.LocationLat, &e.LocationLng, &e.DistanceFromCenterM, &e.Notes, &e.AttendanceRef, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan geofence event: %w", err)
		}
		events = append(events, e)
	}

	return events, total, nil
}

// CountByHour implements geofence.EventRepository.
func (r *eventRepository) CountByHour(ctx context.Context, geofenceID string, day time.Time) ([]geofence.HourBucket, error) {
	q := GetQuerier(ctx, r.db)

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT EXTRACT(HOUR FROM recorded_at AT TIME ZONE 'UTC')::int AS hour,
			COUNT(*) FILTER (WHERE event_type = 'entry') AS entries,
			COUNT(*) FILTER (WHERE event_type = 'exit') AS exits
		FROM geofence_events
		WHERE geofence_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		GROUP BY hour
	`

	rows, err := q.Query(ctx, query, geofenceID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly event counts: %w", err)
	}
	defer rows.Close()

	byHour := make(map[int]geofence.HourBucket)
	for rows.Next() {
		var b geofence.HourBucket
		if err := rows.Scan(&b.Hour, &b.Entries, &b.Exits); err != nil {
			return nil, fmt.Errorf("failed to scan hourly event counts: %w", err)
		}
		byHour[b.Hour] = b
	}

	// All 24 buckets are always returned, zero-filled.
	buckets := make([]geofence.HourBucket, 24)
	for h := 0; h < 24; h++ {
		buckets[h] = geofence.HourBucket{Hour: h}
		if b, ok := byHour[h]; ok {
			buckets[h] = b
		}
	}

	return buckets, nil
}

// CountByDay implements geofence.EventRepository.
func (r *eventRepository) CountByDay(ctx context.Context, geofenceID string, weekStart time.Time) ([]geofence.DayBucket, error) {
	q := GetQuerier(ctx, r.db)

	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	query := `
		SELECT (recorded_at AT TIME ZONE 'UTC')::date AS day,
			COUNT(*) FILTER (WHERE event_type = 'entry') AS entries,
			COUNT(*) FILTER (WHERE event_type = 'exit') AS exits
		FROM geofence_events
		WHERE geofence_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		GROUP BY day
	`

	rows, err := q.Query(ctx, query, geofenceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily event counts: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]geofence.DayBucket)
	for rows.Next() {
		var day time.Time
		var entries, exits int
		if err := rows.Scan(&day, &entries, &exits); err != nil {
			return nil, fmt.Errorf("failed to scan daily event counts: %w", err)
		}
		key := day.Format("2006-01-02")
		byDay[key] = geofence.DayBucket{Date: key, Entries: entries, Exits: exits}
	}

	buckets := make([]geofence.DayBucket, 7)
	for i := 0; i < 7; i++ {
		key := start.Add(time.Duration(i) * 24 * time.Hour).Format("2006-01-02")
		buckets[i] = geofence.DayBucket{Date: key}
		if b, ok := byDay[key]; ok {
			buckets[i] = b
		}
	}

	return buckets, nil
}

func NewEventRepository(db *database.DB) geofence.EventRepository {
	return &eventRepository{db: db}
}
