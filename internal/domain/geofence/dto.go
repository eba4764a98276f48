package geofence

import (
	"strings"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
)

// ========================================
// ADMIN DTOs
// ========================================

type CreateGeofenceRequest struct {
	Name                      string   `json:"name"`
	Type                      string   `json:"type"`
	Description               *string  `json:"description,omitempty"`
	Color                     string   `json:"color"`
	CenterLat                 float64  `json:"center_lat"`
	CenterLng                 float64  `json:"center_lng"`
	RadiusM                   int      `json:"radius_m"`
	DepartmentID              string   `json:"department_id"`
	NotifyOnEntry             bool     `json:"notify_on_entry"`
	NotifyOnExit              bool     `json:"notify_on_exit"`
	AttendanceStartTime       *string  `json:"attendance_start_time,omitempty"`
	AttendanceRequiredMinutes *int     `json:"attendance_required_minutes,omitempty"`
	AssignedEmployeeIDs       []string `json:"assigned_employee_ids,omitempty"`
}

func (r *CreateGeofenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if validator.IsEmpty(r.DepartmentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id is required",
		})
	}

	if !validator.IsValidLatitude(r.CenterLat) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_lat",
			Message: "center_lat must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.CenterLng) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_lng",
			Message: "center_lng must be between -180 and 180",
		})
	}

	if r.RadiusM < 10 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_m",
			Message: "radius_m must be at least 10",
		})
	}

	if r.Color != "" && !validator.IsValidHexColor(r.Color) {
		errs = append(errs, validator.ValidationError{
			Field:   "color",
			Message: "color must be a #RRGGBB hex string",
		})
	}

	if r.AttendanceStartTime != nil {
		if _, err := time.Parse("15:04", *r.AttendanceStartTime); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "attendance_start_time",
				Message: "attendance_start_time must be in HH:MM format",
			})
		}
	}

	if r.AttendanceRequiredMinutes != nil && *r.AttendanceRequiredMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_required_minutes",
			Message: "attendance_required_minutes must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateGeofenceRequest struct {
	ID                        string   `json:"-"`
	Name                      *string  `json:"name,omitempty"`
	Type                      *string  `json:"type,omitempty"`
	Description               *string  `json:"description,omitempty"`
	Color                     *string  `json:"color,omitempty"`
	CenterLat                 *float64 `json:"center_lat,omitempty"`
	CenterLng                 *float64 `json:"center_lng,omitempty"`
	RadiusM                   *int     `json:"radius_m,omitempty"`
	DepartmentID              *string  `json:"department_id,omitempty"`
	NotifyOnEntry             *bool    `json:"notify_on_entry,omitempty"`
	NotifyOnExit              *bool    `json:"notify_on_exit,omitempty"`
	AttendanceStartTime       *string  `json:"attendance_start_time,omitempty"`
	AttendanceRequiredMinutes *int     `json:"attendance_required_minutes,omitempty"`
}

func (r *UpdateGeofenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if r.CenterLat != nil && !validator.IsValidLatitude(*r.CenterLat) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_lat",
			Message: "center_lat must be between -90 and 90",
		})
	}

	if r.CenterLng != nil && !validator.IsValidLongitude(*r.CenterLng) {
		errs = append(errs, validator.ValidationError{
			Field:   "center_lng",
			Message: "center_lng must be between -180 and 180",
		})
	}

	if r.RadiusM != nil && *r.RadiusM < 10 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_m",
			Message: "radius_m must be at least 10",
		})
	}

	if r.Color != nil && !validator.IsValidHexColor(*r.Color) {
		errs = append(errs, validator.ValidationError{
			Field:   "color",
			Message: "color must be a #RRGGBB hex string",
		})
	}

	if r.AttendanceStartTime != nil {
		if _, err := time.Parse("15:04", *r.AttendanceStartTime); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "attendance_start_time",
				Message: "attendance_start_time must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AssignEmployeesRequest struct {
	GeofenceID  string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *AssignEmployeesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "employee_ids must not be empty",
		})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids",
				Message: "employee_ids must not contain empty values",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GeofenceResponse struct {
	ID                        string   `json:"id"`
	Name                      string   `json:"name"`
	Type                      string   `json:"type"`
	Description               *string  `json:"description,omitempty"`
	Color                     string   `json:"color"`
	CenterLat                 float64  `json:"center_lat"`
	CenterLng                 float64  `json:"center_lng"`
	RadiusM                   int      `json:"radius_m"`
	DepartmentID              string   `json:"department_id"`
	IsActive                  bool     `json:"is_active"`
	NotifyOnEntry             bool     `json:"notify_on_entry"`
	NotifyOnExit              bool     `json:"notify_on_exit"`
	AttendanceStartTime       *string  `json:"attendance_start_time,omitempty"`
	AttendanceRequiredMinutes *int     `json:"attendance_required_minutes,omitempty"`
	AssignedEmployeeIDs       []string `json:"assigned_employee_ids"`
	CreatedAt                 string   `json:"created_at"`
	UpdatedAt                 string   `json:"updated_at"`
}

type ExtractCoordsRequest struct {
	URL string `json:"url"`
}

type ExtractCoordsResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ========================================
// LISTING DTOs
// ========================================

type EventFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	EventType  *string `json:"event_type,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EventFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EventType != nil {
		validTypes := []string{EventEntry, EventExit, EventBulkCheckIn}
		if !validator.IsInSlice(strings.ToLower(*f.EventType), validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "event_type",
				Message: "event_type must be one of: entry, exit, bulk_check_in",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	ActiveOnly bool    `json:"active_only"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD, on entry_time
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD, on entry_time

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListEventsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Events     []EventResponse `json:"events"`
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Sessions   []SessionResponse `json:"sessions"`
}

type EventResponse struct {
	ID                  string  `json:"id"`
	GeofenceID          string  `json:"geofence_id"`
	EmployeeID          string  `json:"employee_id"`
	EventType           string  `json:"event_type"`
	RecordedAt          string  `json:"recorded_at"`
	LocationLat         float64 `json:"location_lat"`
	LocationLng         float64 `json:"location_lng"`
	DistanceFromCenterM float64 `json:"distance_from_center_m"`
	Notes               *string `json:"notes,omitempty"`
	AttendanceRef       *string `json:"attendance_ref,omitempty"`
}

type SessionResponse struct {
	ID              string  `json:"id"`
	GeofenceID      string  `json:"geofence_id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	EntryEventID    *string `json:"entry_event_id,omitempty"`
	ExitEventID     *string `json:"exit_event_id,omitempty"`
	EntryTime       string  `json:"entry_time"`
	ExitTime        *string `json:"exit_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	IsActive        bool    `json:"is_active"`
	Synthetic       bool    `json:"synthetic"`
	Notes           *string `json:"notes,omitempty"`
}

// ========================================
// AGGREGATION DTOs
// ========================================

// OccupantInfo is one employee currently inside a geofence.
type OccupantInfo struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	SessionID    string  `json:"session_id"`
	EntryTime    string  `json:"entry_time"`
}

// WhoIsInsideResponse splits occupants into the assignment-gated set
// used for attendance and everyone else.
type WhoIsInsideResponse struct {
	GeofenceID        string         `json:"geofence_id"`
	AssignedAndInside []OccupantInfo `json:"assigned_and_inside"`
	OtherInside       []OccupantInfo `json:"other_inside"`
}

type HourBucket struct {
	Hour    int `json:"hour"`
	Entries int `json:"entries"`
	Exits   int `json:"exits"`
}

type DayBucket struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

type TotalTimeResponse struct {
	EmployeeID   string `json:"employee_id"`
	GeofenceID   string `json:"geofence_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	TotalMinutes int    `json:"total_minutes"`
}

type VisitCountResponse struct {
	EmployeeID string `json:"employee_id"`
	GeofenceID string `json:"geofence_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Visits     int    `json:"visits"`
}

// BulkCheckInResult reports the outcome of one bulk check-in call.
// Per-employee failures do not roll back the successes.
type BulkCheckInResult struct {
	CheckedIn        int `json:"checked_in"`
	AlreadyCheckedIn int `json:"already_checked_in"`
	NotAssigned      int `json:"not_assigned"`
	Errors           int `json:"errors"`
}

// MapToResponse converts a Geofence entity to GeofenceResponse
func MapToResponse(g Geofence) GeofenceResponse {
	assigned := g.AssignedEmployeeIDs
	if assigned == nil {
		assigned = []string{}
	}
	return GeofenceResponse{
		ID:                        g.ID,
		Name:                      g.Name,
		Type:                      g.Type,
		Description:               g.Description,
		Color:                     g.Color,
		CenterLat:                 g.CenterLat,
		CenterLng:                 g.CenterLng,
		RadiusM:                   g.RadiusM,
		DepartmentID:              g.DepartmentID,
		IsActive:                  g.IsActive,
		NotifyOnEntry:             g.NotifyOnEntry,
		NotifyOnExit:              g.NotifyOnExit,
		AttendanceStartTime:       g.AttendanceStartTime,
		AttendanceRequiredMinutes: g.AttendanceRequiredMinutes,
		AssignedEmployeeIDs:       assigned,
		CreatedAt:                 g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                 g.UpdatedAt.Format(time.RFC3339),
	}
}

// MapEventToResponse converts an Event entity to EventResponse
func MapEventToResponse(e Event) EventResponse {
	return EventResponse{
		ID:                  e.ID,
		GeofenceID:          e.GeofenceID,
		EmployeeID:          e.EmployeeID,
		EventType:           e.EventType,
		RecordedAt:          e.RecordedAt.Format(time.RFC3339),
		LocationLat:         e.LocationLat,
		LocationLng:         e.LocationLng,
		DistanceFromCenterM: e.DistanceFromCenterM,
		Notes:               e.Notes,
		AttendanceRef:       e.AttendanceRef,
	}
}

// MapSessionToResponse converts a Session entity to SessionResponse
func MapSessionToResponse(s Session) SessionResponse {
	var exitTime *string
	if s.ExitTime != nil {
		formatted := s.ExitTime.Format(time.RFC3339)
		exitTime = &formatted
	}
	return SessionResponse{
		ID:              s.ID,
		GeofenceID:      s.GeofenceID,
		EmployeeID:      s.EmployeeID,
		EmployeeName:    s.EmployeeName,
		EntryEventID:    s.EntryEventID,
		ExitEventID:     s.ExitEventID,
		EntryTime:       s.EntryTime.Format(time.RFC3339),
		ExitTime:        exitTime,
		DurationMinutes: s.DurationMinutes,
		IsActive:        s.IsActive,
		Synthetic:       s.Synthetic(),
		Notes:           s.Notes,
	}
}
