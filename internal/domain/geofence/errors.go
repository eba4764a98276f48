package geofence

import "errors"

// Geofence domain errors
var (
	ErrGeofenceNotFound = errors.New("geofence not found")
	ErrGeofenceInactive = errors.New("geofence is inactive")
	ErrSessionNotFound  = errors.New("geofence session not found")
	ErrEventNotFound    = errors.New("geofence event not found")
	ErrNotAssigned      = errors.New("employee is not assigned to this geofence")
)
