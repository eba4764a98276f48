package admin

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/service/engine"
	"github.com/google/uuid"
)

const (
	defaultColor = "#2563EB"
	defaultType  = "site"
)

// CoordExtractor parses coordinates out of a map URL. Production wiring
// is pkg/maps.Resolver.
type CoordExtractor interface {
	ExtractCoords(ctx context.Context, rawURL string) (float64, float64, error)
}

// RegistryInvalidator lets admin writes push definition changes to the
// evaluation side without waiting out the refresh interval.
type RegistryInvalidator interface {
	Invalidate()
}

type AdminServiceImpl struct {
	geofence.GeofenceRepository
	geofence.AssignmentRepository
	geofence.SessionRepository
	employee.EmployeeRepository

	extractor CoordExtractor
	registry  RegistryInvalidator
	tx        engine.TxRunner

	closeSessionsOnDelete bool
}

func NewAdminService(
	geofences geofence.GeofenceRepository,
	assignments geofence.AssignmentRepository,
	sessions geofence.SessionRepository,
	employees employee.EmployeeRepository,
	extractor CoordExtractor,
	registry RegistryInvalidator,
	tx engine.TxRunner,
	closeSessionsOnDelete bool,
) geofence.AdminService {
	return &AdminServiceImpl{
		GeofenceRepository:    geofences,
		AssignmentRepository:  assignments,
		SessionRepository:     sessions,
		EmployeeRepository:    employees,
		extractor:             extractor,
		registry:              registry,
		tx:                    tx,
		closeSessionsOnDelete: closeSessionsOnDelete,
	}
}

// CreateGeofence implements geofence.AdminService.
func (s *AdminServiceImpl) CreateGeofence(ctx context.Context, req geofence.CreateGeofenceRequest) (geofence.GeofenceResponse, error) {
	if err := req.Validate(); err != nil {
		return geofence.GeofenceResponse{}, err
	}

	for _, employeeID := range req.AssignedEmployeeIDs {
		if _, err := s.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
			return geofence.GeofenceResponse{}, err
		}
	}

	g := geofence.Geofence{
		ID:                        uuid.New().String(),
		Name:                      req.Name,
		Type:                      req.Type,
		Description:               req.Description,
		Color:                     req.Color,
		CenterLat:                 req.CenterLat,
		CenterLng:                 req.CenterLng,
		RadiusM:                   req.RadiusM,
		DepartmentID:              req.DepartmentID,
		IsActive:                  true,
		NotifyOnEntry:             req.NotifyOnEntry,
		NotifyOnExit:              req.NotifyOnExit,
		AttendanceStartTime:       req.AttendanceStartTime,
		AttendanceRequiredMinutes: req.AttendanceRequiredMinutes,
	}
	if g.Color == "" {
		g.Color = defaultColor
	}
	if g.Type == "" {
		g.Type = defaultType
	}

	err := s.tx(ctx, func(txCtx context.Context) error {
		created, err := s.GeofenceRepository.Create(txCtx, g)
		if err != nil {
			return err
		}
		g = created

		if len(req.AssignedEmployeeIDs) > 0 {
			return s.AssignmentRepository.Assign(txCtx, g.ID, req.AssignedEmployeeIDs)
		}
		return nil
	})
	if err != nil {
		return geofence.GeofenceResponse{}, fmt.Errorf("failed to create geofence: %w", err)
	}

	s.registry.Invalidate()
	g.AssignedEmployeeIDs = req.AssignedEmployeeIDs

	slog.Info("geofence created",
		"geofence_id", g.ID,
		"name", g.Name,
		"radius_m", g.RadiusM,
		"assigned", len(req.AssignedEmployeeIDs),
	)

	return geofence.MapToResponse(g), nil
}

// GetGeofence implements geofence.AdminService.
func (s *AdminServiceImpl) GetGeofence(ctx context.Context, id string) (geofence.GeofenceResponse, error) {
	g, err := s.GeofenceRepository.GetByID(ctx, id)
	if err != nil {
		return geofence.GeofenceResponse{}, err
	}
	return geofence.MapToResponse(g), nil
}

// ListGeofences implements geofence.AdminService.
func (s *AdminServiceImpl) ListGeofences(ctx context.Context, includeInactive bool) ([]geofence.GeofenceResponse, error) {
	geofences, err := s.GeofenceRepository.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}

	responses := make([]geofence.GeofenceResponse, 0, len(geofences))
	for _, g := range geofences {
		responses = append(responses, geofence.MapToResponse(g))
	}
	return responses, nil
}

// UpdateGeofence implements geofence.AdminService.
func (s *AdminServiceImpl) UpdateGeofence(ctx context.Context, req geofence.UpdateGeofenceRequest) (geofence.GeofenceResponse, error) {
	if err := req.Validate(); err != nil {
		return geofence.GeofenceResponse{}, err
	}

	if err := s.GeofenceRepository.Update(ctx, req); err != nil {
		return geofence.GeofenceResponse{}, err
	}

	s.registry.Invalidate()

	g, err := s.GeofenceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return geofence.GeofenceResponse{}, err
	}

	return geofence.MapToResponse(g), nil
}

// DeleteGeofence implements geofence.AdminService. Deletion is logical;
// history stays queryable. Outstanding sessions are closed only when the
// deployment opted in.
func (s *AdminServiceImpl) DeleteGeofence(ctx context.Context, id string) error {
	g, err := s.GeofenceRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx(ctx, func(txCtx context.Context) error {
		if err := s.GeofenceRepository.SoftDelete(txCtx, g.ID); err != nil {
			return err
		}
		if !s.closeSessionsOnDelete {
			return nil
		}

		open, err := s.SessionRepository.ListOpenByGeofence(txCtx, g.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, session := range open {
			duration := int(math.Ceil(now.Sub(session.EntryTime).Minutes()))
			if duration < 0 {
				duration = 0
			}
			if err := s.SessionRepository.CloseAdministratively(txCtx, session.ID, now, duration, "geofence_deactivated"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete geofence: %w", err)
	}

	s.registry.Invalidate()
	slog.Info("geofence deactivated", "geofence_id", g.ID, "name", g.Name)

	return nil
}

// AssignEmployees implements geofence.AdminService.
func (s *AdminServiceImpl) AssignEmployees(ctx context.Context, req geofence.AssignEmployeesRequest) (geofence.GeofenceResponse, error) {
	if err := req.Validate(); err != nil {
		return geofence.GeofenceResponse{}, err
	}

	if _, err := s.GeofenceRepository.GetByID(ctx, req.GeofenceID); err != nil {
		return geofence.GeofenceResponse{}, err
	}

	for _, employeeID := range req.EmployeeIDs {
		if _, err := s.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
			return geofence.GeofenceResponse{}, err
		}
	}

	if err := s.AssignmentRepository.Assign(ctx, req.GeofenceID, req.EmployeeIDs); err != nil {
		return geofence.GeofenceResponse{}, fmt.Errorf("failed to assign employees: %w", err)
	}

	s.registry.Invalidate()

	g, err := s.GeofenceRepository.GetByID(ctx, req.GeofenceID)
	if err != nil {
		return geofence.GeofenceResponse{}, err
	}

	return geofence.MapToResponse(g), nil
}

// UnassignEmployee implements geofence.AdminService.
func (s *AdminServiceImpl) UnassignEmployee(ctx context.Context, geofenceID, employeeID string) error {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return err
	}

	if err := s.AssignmentRepository.Unassign(ctx, geofenceID, employeeID); err != nil {
		return fmt.Errorf("failed to unassign employee: %w", err)
	}

	s.registry.Invalidate()
	return nil
}

// ExtractCoordsFromMapURL implements geofence.AdminService.
func (s *AdminServiceImpl) ExtractCoordsFromMapURL(ctx context.Context, req geofence.ExtractCoordsRequest) (geofence.ExtractCoordsResponse, error) {
	lat, lng, err := s.extractor.ExtractCoords(ctx, req.URL)
	if err != nil {
		return geofence.ExtractCoordsResponse{}, err
	}

	return geofence.ExtractCoordsResponse{
		Latitude:  lat,
		Longitude: lng,
	}, nil
}
