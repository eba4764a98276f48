package geofence

import (
	"time"
)

// Event types recorded in the geofence_events log.
const (
	EventEntry       = "entry"
	EventExit        = "exit"
	EventBulkCheckIn = "bulk_check_in"
)

// Geofence is a circular region owned by a department. Deletion is
// logical: IsActive=false removes it from the registry but keeps the
// row so past events and sessions stay resolvable.
type Geofence struct {
	ID            string
	Name          string
	Type          string
	Description   *string
	Color         string
	CenterLat     float64
	CenterLng     float64
	RadiusM       int
	DepartmentID  string
	IsActive      bool
	NotifyOnEntry bool
	NotifyOnExit  bool

	// Attendance policy knobs, consumed only by the bulk check-in bridge.
	AttendanceStartTime       *string
	AttendanceRequiredMinutes *int

	// AssignedEmployeeIDs is the explicit attendance binding. Empty means
	// "no one is bound", not "everyone": membership is still computed for
	// all active employees.
	AssignedEmployeeIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAssigned reports whether employeeID is in the assignment set.
func (g *Geofence) IsAssigned(employeeID string) bool {
	for _, id := range g.AssignedEmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// Event is one append-only boundary crossing or administrative action.
// Rows are never mutated after insert.
type Event struct {
	ID                  string
	GeofenceID          string
	EmployeeID          string
	EventType           string
	RecordedAt          time.Time
	LocationLat         float64
	LocationLng         float64
	DistanceFromCenterM float64
	Notes               *string
	AttendanceRef       *string
	CreatedAt           time.Time
}

// Session pairs an entry with an exit. A synthetic session has a nil
// EntryEventID: its entry time was fabricated because the exit arrived
// without a preceding entry.
type Session struct {
	ID              string
	GeofenceID      string
	EmployeeID      string
	EntryEventID    *string
	ExitEventID     *string
	EntryTime       time.Time
	ExitTime        *time.Time
	DurationMinutes *int
	IsActive        bool
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName *string
}

// Synthetic reports whether the session was fabricated from an orphan exit.
func (s *Session) Synthetic() bool {
	return s.EntryEventID == nil
}
