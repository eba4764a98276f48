package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the engine's narrow view of the external
// attendance table.
type AttendanceRepository interface {
	// Create inserts a new attendance record
	Create(ctx context.Context, record Record) (Record, error)

	// ExistsSince reports whether the employee already has a record with
	// check_in_time in [since, now]. Used to prevent double check-in.
	ExistsSince(ctx context.Context, employeeID string, since time.Time) (bool, error)
}
