package geofence

import (
	"context"
	"time"
)

// GeofenceRepository defines data access for geofence definitions.
type GeofenceRepository interface {
	// Create inserts a new geofence
	Create(ctx context.Context, g Geofence) (Geofence, error)

	// GetByID retrieves a geofence with its assignment set
	GetByID(ctx context.Context, id string) (Geofence, error)

	// List retrieves geofences; inactive ones only when includeInactive is set
	List(ctx context.Context, includeInactive bool) ([]Geofence, error)

	// ListActive retrieves all active geofences with their assignment
	// sets. This is the registry's load path.
	ListActive(ctx context.Context) ([]Geofence, error)

	// Update applies a partial update
	Update(ctx context.Context, req UpdateGeofenceRequest) error

	// SoftDelete sets is_active = false
	SoftDelete(ctx context.Context, id string) error
}

// AssignmentRepository manages the geofence_employee_assignments relation.
type AssignmentRepository interface {
	// Assign binds employees to a geofence; existing bindings are kept
	Assign(ctx context.Context, geofenceID string, employeeIDs []string) error

	// Unassign removes a single binding
	Unassign(ctx context.Context, geofenceID string, employeeID string) error

	// ListByGeofence returns the assigned employee ids
	ListByGeofence(ctx context.Context, geofenceID string) ([]string, error)
}

// EventRepository appends to and reads the geofence_events log.
// Events are never updated or deleted.
type EventRepository interface {
	Create(ctx context.Context, event Event) (Event, error)

	// ListByGeofence returns events with filters and pagination
	ListByGeofence(ctx context.Context, geofenceID string, filter EventFilter) ([]Event, int64, error)

	// CountByHour buckets entry/exit counts per hour of the given UTC day
	CountByHour(ctx context.Context, geofenceID string, day time.Time) ([]HourBucket, error)

	// CountByDay buckets entry/exit counts per day of the week starting weekStart
	CountByDay(ctx context.Context, geofenceID string, weekStart time.Time) ([]DayBucket, error)
}

// SessionRepository manages geofence_sessions rows. At most one active
// session may exist per (employee, geofence); the engine relies on
// GetOpen + the partial unique index to hold that invariant.
type SessionRepository interface {
	Create(ctx context.Context, session Session) (Session, error)

	// GetOpen returns the active session for the pair, or nil
	GetOpen(ctx context.Context, employeeID, geofenceID string) (*Session, error)

	// UpdateEntry re-points an open session at a newer entry event
	// (duplicate-entry collapse)
	UpdateEntry(ctx context.Context, sessionID string, entryEventID string, entryTime time.Time) error

	// Close finalizes a session: exit linkage, duration, is_active=false
	Close(ctx context.Context, sessionID string, exitEventID string, exitTime time.Time, durationMinutes int) error

	// CloseAdministratively finalizes a session without an exit event,
	// recording why in the notes (e.g. the geofence was deactivated)
	CloseAdministratively(ctx context.Context, sessionID string, exitTime time.Time, durationMinutes int, notes string) error

	// ListOpenByGeofence returns all active sessions for a geofence,
	// with employee names joined for display
	ListOpenByGeofence(ctx context.Context, geofenceID string) ([]Session, error)

	// ListByGeofence returns sessions with filters and pagination
	ListByGeofence(ctx context.Context, geofenceID string, filter SessionFilter) ([]Session, int64, error)

	// TotalDurationMinutes sums duration over closed sessions whose
	// entry_time falls in [from, to]
	TotalDurationMinutes(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (int, error)

	// VisitCount counts sessions (open or closed) whose entry_time falls
	// in [from, to]
	VisitCount(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (int, error)
}

// Notifier is the outer layer's notification sink. The engine calls it
// after a committed event on geofences with notify flags set; failures
// are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, event Event, g Geofence) error
}
