package ingest

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const defaultSource = "app"

type IngestServiceImpl struct {
	location.SampleRepository
	location.RetryRepository
	employee.EmployeeRepository

	evaluator location.Evaluator
	apiKey    string
}

func NewIngestService(
	samples location.SampleRepository,
	retries location.RetryRepository,
	employees employee.EmployeeRepository,
	evaluator location.Evaluator,
	apiKey string,
) location.IngestService {
	return &IngestServiceImpl{
		SampleRepository:   samples,
		RetryRepository:    retries,
		EmployeeRepository: employees,
		evaluator:          evaluator,
		apiKey:             apiKey,
	}
}

// Ingest implements location.IngestService. The sample is accepted once
// it is persisted; evaluation failure routes it to the retry list and
// never reaches the caller.
func (s *IngestServiceImpl) Ingest(ctx context.Context, apiKey string, req location.IngestRequest) (location.IngestResult, error) {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.apiKey)) != 1 {
		return location.IngestResult{}, location.ErrUnauthenticated
	}

	if err := req.Validate(); err != nil {
		return location.IngestResult{}, err
	}

	emp, err := s.resolveEmployee(ctx, req)
	if err != nil {
		return location.IngestResult{}, err
	}

	now := time.Now().UTC()
	recordedAt := now
	if req.RecordedAt != nil && !validator.IsEmpty(*req.RecordedAt) {
		parsed, valid := validator.IsValidDateTime(strings.TrimSpace(*req.RecordedAt))
		if !valid {
			// Validate() already rejected malformed timestamps; this is
			// unreachable in practice but kept as a guard.
			return location.IngestResult{}, validator.ValidationErrors{{
				Field:   "recorded_at",
				Message: "recorded_at must be an ISO8601 timestamp",
			}}
		}
		recordedAt = parsed.UTC()
	}

	source := defaultSource
	if req.Source != nil && !validator.IsEmpty(*req.Source) {
		source = strings.TrimSpace(*req.Source)
	}

	sample := location.Sample{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		Lat:        *req.Latitude,
		Lng:        *req.Longitude,
		AccuracyM:  req.AccuracyM,
		SpeedKmh:   req.SpeedKmh,
		Source:     source,
		RecordedAt: recordedAt,
		ReceivedAt: now,
		VehicleRef: req.VehicleRef,
	}

	sample, err = s.SampleRepository.Create(ctx, sample)
	if err != nil {
		return location.IngestResult{}, fmt.Errorf("failed to persist location sample: %w", err)
	}

	if !emp.Active() {
		slog.Debug("employee not active, sample stored without evaluation",
			"sample_id", sample.ID,
			"employee_id", emp.ID,
			"status", emp.Status,
		)
		return location.IngestResult{SampleID: sample.ID}, nil
	}

	if err := s.evaluator.Evaluate(ctx, sample); err != nil {
		slog.Warn("sample evaluation failed, queued for retry",
			"sample_id", sample.ID,
			"employee_id", emp.ID,
			"error", err,
		)
		if enqErr := s.RetryRepository.Enqueue(ctx, sample.ID, err.Error()); enqErr != nil {
			slog.Error("failed to enqueue sample retry",
				"sample_id", sample.ID, "error", enqErr)
		}
	}

	return location.IngestResult{SampleID: sample.ID}, nil
}

func (s *IngestServiceImpl) resolveEmployee(ctx context.Context, req location.IngestRequest) (employee.Employee, error) {
	if !validator.IsEmpty(string(req.EmployeeID)) {
		return s.EmployeeRepository.GetByID(ctx, strings.TrimSpace(string(req.EmployeeID)))
	}
	return s.EmployeeRepository.GetByJobNumber(ctx, strings.TrimSpace(string(req.JobNumber)))
}

// LastLocation implements location.IngestService.
func (s *IngestServiceImpl) LastLocation(ctx context.Context, employeeID string) (location.SampleResponse, error) {
	if _, err := s.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		return location.SampleResponse{}, err
	}

	sample, err := s.SampleRepository.LatestByEmployee(ctx, employeeID)
	if err != nil {
		return location.SampleResponse{}, err
	}

	return location.SampleResponse{
		ID:         sample.ID,
		EmployeeID: sample.EmployeeID,
		Latitude:   sample.Lat,
		Longitude:  sample.Lng,
		AccuracyM:  sample.AccuracyM,
		SpeedKmh:   sample.SpeedKmh,
		Source:     sample.Source,
		RecordedAt: sample.RecordedAt.Format(time.RFC3339),
		ReceivedAt: sample.ReceivedAt.Format(time.RFC3339),
		VehicleRef: sample.VehicleRef,
	}, nil
}
