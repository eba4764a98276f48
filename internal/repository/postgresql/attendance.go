package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/attendance"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (id, employee_id, check_in_time, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.CheckInTime, record.Status, record.Notes,
	).Scan(&record.CreatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// ExistsSince implements attendance.AttendanceRepository.
func (r *attendanceRepository) ExistsSince(ctx context.Context, employeeID string, since time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE employee_id = $1 AND check_in_time >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance existence: %w", err)
	}

	return exists, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
