package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/handler/http/response"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// locationKeyHeader carries the shared tracker key on the ingest endpoint.
const locationKeyHeader = "X-Location-Key"

type LocationHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
	LastLocation(w http.ResponseWriter, r *http.Request)
}

type locationHandlerImpl struct {
	ingestService location.IngestService
}

func NewLocationHandler(ingestService location.IngestService) LocationHandler {
	return &locationHandlerImpl{ingestService: ingestService}
}

// ingestReply is the fixed wire shape of POST /locations. Trackers in the
// field parse this exact format, so it bypasses the standard envelope.
type ingestReply struct {
	OK       bool              `json:"ok"`
	SampleID string            `json:"sample_id,omitempty"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

func writeIngestReply(w http.ResponseWriter, status int, reply ingestReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(reply)
}

// Ingest implements LocationHandler.
func (h *locationHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	var req location.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIngestReply(w, http.StatusBadRequest, ingestReply{OK: false, Error: "invalid_input"})
		return
	}

	result, err := h.ingestService.Ingest(r.Context(), r.Header.Get(locationKeyHeader), req)
	if err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			writeIngestReply(w, http.StatusBadRequest, ingestReply{
				OK:      false,
				Error:   "invalid_input",
				Details: validationErrs.ToMap(),
			})
		case errors.Is(err, location.ErrUnauthenticated):
			writeIngestReply(w, http.StatusUnauthorized, ingestReply{OK: false, Error: "unauthenticated"})
		case errors.Is(err, employee.ErrEmployeeNotFound):
			writeIngestReply(w, http.StatusNotFound, ingestReply{OK: false, Error: "employee_not_found"})
		default:
			slog.Error("location ingest failed", "error", err)
			writeIngestReply(w, http.StatusInternalServerError, ingestReply{OK: false, Error: "internal"})
		}
		return
	}

	writeIngestReply(w, http.StatusOK, ingestReply{OK: true, SampleID: result.SampleID})
}

// LastLocation implements LocationHandler.
func (h *locationHandlerImpl) LastLocation(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	sample, err := h.ingestService.LastLocation(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, sample)
}
