package attendance

import "time"

// Statuses the engine writes. The outer HR application owns the rest of
// the attendance lifecycle.
const (
	StatusPresent = "present"
)

// Record is a row in the external attendance table. The engine only
// inserts via the bulk check-in bridge; it never updates or deletes.
type Record struct {
	ID          string
	EmployeeID  string
	CheckInTime time.Time
	Status      string
	Notes       *string
	CreatedAt   time.Time
}
