package http

import (
	"encoding/json"
	"net/http"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type GeofenceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AssignEmployees(w http.ResponseWriter, r *http.Request)
	UnassignEmployee(w http.ResponseWriter, r *http.Request)
	ExtractCoords(w http.ResponseWriter, r *http.Request)
	BulkCheckIn(w http.ResponseWriter, r *http.Request)
}

type geofenceHandlerImpl struct {
	adminService   geofence.AdminService
	checkInService geofence.CheckInService
}

func NewGeofenceHandler(adminService geofence.AdminService, checkInService geofence.CheckInService) GeofenceHandler {
	return &geofenceHandlerImpl{
		adminService:   adminService,
		checkInService: checkInService,
	}
}

// Create implements GeofenceHandler.
func (h *geofenceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req geofence.CreateGeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.adminService.CreateGeofence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Geofence created", result)
}

// Get implements GeofenceHandler.
func (h *geofenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminService.GetGeofence(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements GeofenceHandler.
func (h *geofenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	result, err := h.adminService.ListGeofences(r.Context(), includeInactive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements GeofenceHandler.
func (h *geofenceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req geofence.UpdateGeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.adminService.UpdateGeofence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Geofence updated", result)
}

// Delete implements GeofenceHandler.
func (h *geofenceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteGeofence(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Geofence deleted", nil)
}

// AssignEmployees implements GeofenceHandler.
func (h *geofenceHandlerImpl) AssignEmployees(w http.ResponseWriter, r *http.Request) {
	var req geofence.AssignEmployeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.GeofenceID = chi.URLParam(r, "id")

	result, err := h.adminService.AssignEmployees(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employees assigned", result)
}

// UnassignEmployee implements GeofenceHandler.
func (h *geofenceHandlerImpl) UnassignEmployee(w http.ResponseWriter, r *http.Request) {
	geofenceID := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.adminService.UnassignEmployee(r.Context(), geofenceID, employeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee unassigned", nil)
}

// ExtractCoords implements GeofenceHandler.
func (h *geofenceHandlerImpl) ExtractCoords(w http.ResponseWriter, r *http.Request) {
	var req geofence.ExtractCoordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.URL == "" {
		response.BadRequest(w, "url is required", nil)
		return
	}

	result, err := h.adminService.ExtractCoordsFromMapURL(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BulkCheckIn implements GeofenceHandler.
func (h *geofenceHandlerImpl) BulkCheckIn(w http.ResponseWriter, r *http.Request) {
	actorID := "unknown"
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if id, ok := claims["actor_id"].(string); ok && id != "" {
			actorID = id
		}
	}

	result, err := h.checkInService.BulkCheckIn(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Bulk check-in completed", result)
}
