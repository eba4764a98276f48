package response

import (
	"errors"
	"net/http"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/maps"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Geofence domain errors
	case errors.Is(err, geofence.ErrGeofenceNotFound):
		NotFound(w, "Geofence not found")
	case errors.Is(err, geofence.ErrGeofenceInactive):
		Conflict(w, "Geofence is not active")
	case errors.Is(err, geofence.ErrSessionNotFound):
		NotFound(w, "Session not found")
	case errors.Is(err, geofence.ErrEventNotFound):
		NotFound(w, "Event not found")
	case errors.Is(err, geofence.ErrNotAssigned):
		Conflict(w, "Employee is not assigned to this geofence")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Location domain errors
	case errors.Is(err, location.ErrUnauthenticated):
		Unauthorized(w, "Invalid location API key")
	case errors.Is(err, location.ErrSampleNotFound):
		NotFound(w, "Location sample not found")

	// Map URL parsing
	case errors.Is(err, maps.ErrNoCoordinates):
		BadRequest(w, "No coordinates found in the given URL", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
