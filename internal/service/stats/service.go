package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
)

type StatsServiceImpl struct {
	geofence.GeofenceRepository
	geofence.EventRepository
	geofence.SessionRepository
}

func NewStatsService(
	geofences geofence.GeofenceRepository,
	events geofence.EventRepository,
	sessions geofence.SessionRepository,
) geofence.StatsService {
	return &StatsServiceImpl{
		GeofenceRepository: geofences,
		EventRepository:    events,
		SessionRepository:  sessions,
	}
}

// WhoIsInside implements geofence.StatsService. Occupancy comes from open
// sessions; the assignment set only decides which bucket each occupant
// lands in.
func (s *StatsServiceImpl) WhoIsInside(ctx context.Context, geofenceID string) (geofence.WhoIsInsideResponse, error) {
	g, err := s.GeofenceRepository.GetByID(ctx, geofenceID)
	if err != nil {
		return geofence.WhoIsInsideResponse{}, err
	}

	open, err := s.SessionRepository.ListOpenByGeofence(ctx, geofenceID)
	if err != nil {
		return geofence.WhoIsInsideResponse{}, fmt.Errorf("failed to list open sessions: %w", err)
	}

	resp := geofence.WhoIsInsideResponse{
		GeofenceID:        geofenceID,
		AssignedAndInside: []geofence.OccupantInfo{},
		OtherInside:       []geofence.OccupantInfo{},
	}

	for _, session := range open {
		occupant := geofence.OccupantInfo{
			EmployeeID:   session.EmployeeID,
			EmployeeName: session.EmployeeName,
			SessionID:    session.ID,
			EntryTime:    session.EntryTime.Format(time.RFC3339),
		}
		if g.IsAssigned(session.EmployeeID) {
			resp.AssignedAndInside = append(resp.AssignedAndInside, occupant)
		} else {
			resp.OtherInside = append(resp.OtherInside, occupant)
		}
	}

	return resp, nil
}

// ActiveSessions implements geofence.StatsService.
func (s *StatsServiceImpl) ActiveSessions(ctx context.Context, geofenceID string) ([]geofence.SessionResponse, error) {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return nil, err
	}

	open, err := s.SessionRepository.ListOpenByGeofence(ctx, geofenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}

	responses := make([]geofence.SessionResponse, 0, len(open))
	for _, session := range open {
		responses = append(responses, geofence.MapSessionToResponse(session))
	}

	return responses, nil
}

// ListEvents implements geofence.StatsService.
func (s *StatsServiceImpl) ListEvents(ctx context.Context, geofenceID string, filter geofence.EventFilter) (geofence.ListEventsResponse, error) {
	if err := filter.Validate(); err != nil {
		return geofence.ListEventsResponse{}, err
	}

	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return geofence.ListEventsResponse{}, err
	}

	events, total, err := s.EventRepository.ListByGeofence(ctx, geofenceID, filter)
	if err != nil {
		return geofence.ListEventsResponse{}, fmt.Errorf("failed to list geofence events: %w", err)
	}

	responses := make([]geofence.EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, geofence.MapEventToResponse(e))
	}

	return geofence.ListEventsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
		Events:     responses,
	}, nil
}

// ListSessions implements geofence.StatsService.
func (s *StatsServiceImpl) ListSessions(ctx context.Context, geofenceID string, filter geofence.SessionFilter) (geofence.ListSessionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return geofence.ListSessionsResponse{}, err
	}

	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return geofence.ListSessionsResponse{}, err
	}

	sessions, total, err := s.SessionRepository.ListByGeofence(ctx, geofenceID, filter)
	if err != nil {
		return geofence.ListSessionsResponse{}, fmt.Errorf("failed to list geofence sessions: %w", err)
	}

	responses := make([]geofence.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, geofence.MapSessionToResponse(session))
	}

	return geofence.ListSessionsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
		Sessions:   responses,
	}, nil
}

// TotalTime implements geofence.StatsService. Only closed sessions count;
// an open session has no duration yet.
func (s *StatsServiceImpl) TotalTime(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (geofence.TotalTimeResponse, error) {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return geofence.TotalTimeResponse{}, err
	}

	minutes, err := s.SessionRepository.TotalDurationMinutes(ctx, employeeID, geofenceID, from, to)
	if err != nil {
		return geofence.TotalTimeResponse{}, fmt.Errorf("failed to sum session time: %w", err)
	}

	return geofence.TotalTimeResponse{
		EmployeeID:   employeeID,
		GeofenceID:   geofenceID,
		From:         from.Format(time.RFC3339),
		To:           to.Format(time.RFC3339),
		TotalMinutes: minutes,
	}, nil
}

// VisitCount implements geofence.StatsService.
func (s *StatsServiceImpl) VisitCount(ctx context.Context, employeeID, geofenceID string, from, to time.Time) (geofence.VisitCountResponse, error) {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return geofence.VisitCountResponse{}, err
	}

	visits, err := s.SessionRepository.VisitCount(ctx, employeeID, geofenceID, from, to)
	if err != nil {
		return geofence.VisitCountResponse{}, fmt.Errorf("failed to count visits: %w", err)
	}

	return geofence.VisitCountResponse{
		EmployeeID: employeeID,
		GeofenceID: geofenceID,
		From:       from.Format(time.RFC3339),
		To:         to.Format(time.RFC3339),
		Visits:     visits,
	}, nil
}

// HourlyEvents implements geofence.StatsService.
func (s *StatsServiceImpl) HourlyEvents(ctx context.Context, geofenceID string, day time.Time) ([]geofence.HourBucket, error) {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return nil, err
	}

	buckets, err := s.EventRepository.CountByHour(ctx, geofenceID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket events by hour: %w", err)
	}

	return buckets, nil
}

// DailyEvents implements geofence.StatsService.
func (s *StatsServiceImpl) DailyEvents(ctx context.Context, geofenceID string, weekStart time.Time) ([]geofence.DayBucket, error) {
	if _, err := s.GeofenceRepository.GetByID(ctx, geofenceID); err != nil {
		return nil, err
	}

	buckets, err := s.EventRepository.CountByDay(ctx, geofenceID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket events by day: %w", err)
	}

	return buckets, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
