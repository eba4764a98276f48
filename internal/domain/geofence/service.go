package geofence

import (
	"context"
	"time"
)

// AdminService defines the geofence control surface.
type AdminService interface {
	// CreateGeofence validates and stores a new geofence, including its
	// initial assignment set
	CreateGeofence(ctx context.Context, req CreateGeofenceRequest) (GeofenceResponse, error)

	// GetGeofence retrieves a single geofence
	GetGeofence(ctx context.Context, id string) (GeofenceResponse, error)

	// ListGeofences retrieves geofences, optionally including logically
	// deleted ones
	ListGeofences(ctx context.Context, includeInactive bool) ([]GeofenceResponse, error)

	// UpdateGeofence applies a partial update
	UpdateGeofence(ctx context.Context, req UpdateGeofenceRequest) (GeofenceResponse, error)

	// DeleteGeofence logically deletes a geofence; past events and
	// sessions stay resolvable
	DeleteGeofence(ctx context.Context, id string) error

	// AssignEmployees adds employees to the geofence's assignment set
	AssignEmployees(ctx context.Context, req AssignEmployeesRequest) (GeofenceResponse, error)

	// UnassignEmployee removes one employee from the assignment set
	UnassignEmployee(ctx context.Context, geofenceID, employeeID string) error

	// ExtractCoordsFromMapURL parses coordinates out of a Google Maps URL,
	// expanding shortened links first
	ExtractCoordsFromMapURL(ctx context.Context, req ExtractCoordsRequest) (ExtractCoordsResponse, error)
}

// StatsService defines the read-side aggregation views.
type StatsService interface {
	// WhoIsInside lists current occupants split into assigned and other
	WhoIsInside(ctx context.Context, geofenceID string) (WhoIsInsideResponse, error)

	// ActiveSessions lists open sessions for a geofence
	ActiveSessions(ctx context.Context, geofenceID string) ([]SessionResponse, error)

	// ListEvents pages through the event log of a geofence
	ListEvents(ctx context.Context, geofenceID string, filter EventFilter) (ListEventsResponse, error)

	// ListSessions pages through the sessions of a geofence
	ListSessions(ctx context.Context, geofenceID string, filter SessionFilter) (ListSessionsResponse, error)

	// TotalTime sums closed-session minutes for an employee in a window
	TotalTime(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (TotalTimeResponse, error)

	// VisitCount counts sessions started in a window
	VisitCount(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (VisitCountResponse, error)

	// HourlyEvents buckets entries/exits per hour of a UTC day
	HourlyEvents(ctx context.Context, geofenceID string, day time.Time) ([]HourBucket, error)

	// DailyEvents buckets entries/exits per day of a week
	DailyEvents(ctx context.Context, geofenceID string, weekStart time.Time) ([]DayBucket, error)
}

// CheckInService bridges geofence presence to attendance.
type CheckInService interface {
	// BulkCheckIn checks in every assigned employee currently inside the
	// geofence. Per-employee failures are counted, not propagated.
	BulkCheckIn(ctx context.Context, geofenceID string, actorID string) (BulkCheckInResult, error)
}
