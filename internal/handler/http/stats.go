package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/handler/http/response"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type StatsHandler interface {
	WhoIsInside(w http.ResponseWriter, r *http.Request)
	ActiveSessions(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	ListSessions(w http.ResponseWriter, r *http.Request)
	TotalTime(w http.ResponseWriter, r *http.Request)
	VisitCount(w http.ResponseWriter, r *http.Request)
	HourlyEvents(w http.ResponseWriter, r *http.Request)
	DailyEvents(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	statsService geofence.StatsService
}

func NewStatsHandler(statsService geofence.StatsService) StatsHandler {
	return &statsHandlerImpl{statsService: statsService}
}

// WhoIsInside implements StatsHandler.
func (h *statsHandlerImpl) WhoIsInside(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.WhoIsInside(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ActiveSessions implements StatsHandler.
func (h *statsHandlerImpl) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.ActiveSessions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListEvents implements StatsHandler.
func (h *statsHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := geofence.EventFilter{
		Page:  queryInt(query.Get("page")),
		Limit: queryInt(query.Get("limit")),
	}
	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := query.Get("event_type"); v != "" {
		filter.EventType = &v
	}
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}

	result, err := h.statsService.ListEvents(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListSessions implements StatsHandler.
func (h *statsHandlerImpl) ListSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := geofence.SessionFilter{
		Page:       queryInt(query.Get("page")),
		Limit:      queryInt(query.Get("limit")),
		ActiveOnly: query.Get("active_only") == "true",
	}
	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}

	result, err := h.statsService.ListSessions(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TotalTime implements StatsHandler.
func (h *statsHandlerImpl) TotalTime(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}

	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.TotalTime(r.Context(), employeeID, chi.URLParam(r, "id"), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// VisitCount implements StatsHandler.
func (h *statsHandlerImpl) VisitCount(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}

	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	result, err := h.statsService.VisitCount(r.Context(), employeeID, chi.URLParam(r, "id"), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// HourlyEvents implements StatsHandler.
func (h *statsHandlerImpl) HourlyEvents(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	day, valid := validator.IsValidDate(dateStr)
	if !valid {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return
	}

	result, err := h.statsService.HourlyEvents(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyEvents implements StatsHandler.
func (h *statsHandlerImpl) DailyEvents(w http.ResponseWriter, r *http.Request) {
	weekStartStr := r.URL.Query().Get("week_start")
	weekStart, valid := validator.IsValidDate(weekStartStr)
	if !valid {
		response.BadRequest(w, "week_start must be in YYYY-MM-DD format", nil)
		return
	}

	result, err := h.statsService.DailyEvents(r.Context(), chi.URLParam(r, "id"), weekStart)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// parseWindow reads from/to dates from the query and widens them to the
// inclusive [from 00:00, to 23:59:59] UTC window.
func parseWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	query := r.URL.Query()

	from, validFrom := validator.IsValidDate(query.Get("from"))
	if !validFrom {
		response.BadRequest(w, "from must be in YYYY-MM-DD format", nil)
		return time.Time{}, time.Time{}, false
	}

	to, validTo := validator.IsValidDate(query.Get("to"))
	if !validTo {
		response.BadRequest(w, "to must be in YYYY-MM-DD format", nil)
		return time.Time{}, time.Time{}, false
	}

	toEnd := to.Add(24*time.Hour - time.Second)
	if toEnd.Before(from) {
		response.BadRequest(w, "to must not be before from", nil)
		return time.Time{}, time.Time{}, false
	}

	return from, toEnd, true
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
