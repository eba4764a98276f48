package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/attendance"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/service/engine"
	"github.com/google/uuid"
)

type CheckInServiceImpl struct {
	geofence.GeofenceRepository
	geofence.SessionRepository
	geofence.EventRepository
	attendance.AttendanceRepository

	tx engine.TxRunner
}

func NewCheckInService(
	geofences geofence.GeofenceRepository,
	sessions geofence.SessionRepository,
	events geofence.EventRepository,
	attendances attendance.AttendanceRepository,
	tx engine.TxRunner,
) geofence.CheckInService {
	return &CheckInServiceImpl{
		GeofenceRepository:   geofences,
		SessionRepository:    sessions,
		EventRepository:      events,
		AttendanceRepository: attendances,
		tx:                   tx,
	}
}

// BulkCheckIn implements geofence.CheckInService. Each assigned occupant
// gets an independent transaction: one employee failing never rolls back
// the others.
func (s *CheckInServiceImpl) BulkCheckIn(ctx context.Context, geofenceID string, actorID string) (geofence.BulkCheckInResult, error) {
	g, err := s.GeofenceRepository.GetByID(ctx, geofenceID)
	if err != nil {
		return geofence.BulkCheckInResult{}, err
	}
	if !g.IsActive {
		return geofence.BulkCheckInResult{}, geofence.ErrGeofenceInactive
	}

	open, err := s.SessionRepository.ListOpenByGeofence(ctx, geofenceID)
	if err != nil {
		return geofence.BulkCheckInResult{}, fmt.Errorf("failed to list open sessions: %w", err)
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var result geofence.BulkCheckInResult
	for _, session := range open {
		if !g.IsAssigned(session.EmployeeID) {
			result.NotAssigned++
			continue
		}

		exists, err := s.AttendanceRepository.ExistsSince(ctx, session.EmployeeID, dayStart)
		if err != nil {
			slog.Error("attendance lookup failed during bulk check-in",
				"geofence_id", geofenceID,
				"employee_id", session.EmployeeID,
				"error", err,
			)
			result.Errors++
			continue
		}
		if exists {
			result.AlreadyCheckedIn++
			continue
		}

		if err := s.checkInOne(ctx, g, session, actorID, now); err != nil {
			slog.Error("bulk check-in failed for employee",
				"geofence_id", geofenceID,
				"employee_id", session.EmployeeID,
				"error", err,
			)
			result.Errors++
			continue
		}

		result.CheckedIn++
	}

	slog.Info("bulk check-in completed",
		"geofence_id", geofenceID,
		"actor_id", actorID,
		"checked_in", result.CheckedIn,
		"already_checked_in", result.AlreadyCheckedIn,
		"not_assigned", result.NotAssigned,
		"errors", result.Errors,
	)

	return result, nil
}

// checkInOne writes the attendance record and its bulk_check_in event in
// one transaction so the attendance_ref link cannot dangle.
func (s *CheckInServiceImpl) checkInOne(ctx context.Context, g geofence.Geofence, session geofence.Session, actorID string, now time.Time) error {
	notes := fmt.Sprintf("geofence bulk check-in: %s", g.Name)

	return s.tx(ctx, func(txCtx context.Context) error {
		record, err := s.AttendanceRepository.Create(txCtx, attendance.Record{
			ID:          uuid.New().String(),
			EmployeeID:  session.EmployeeID,
			CheckInTime: now,
			Status:      attendance.StatusPresent,
			Notes:       &notes,
		})
		if err != nil {
			return err
		}

		eventNotes := fmt.Sprintf("bulk check-in by %s", actorID)
		_, err = s.EventRepository.Create(txCtx, geofence.Event{
			ID:            uuid.New().String(),
			GeofenceID:    g.ID,
			EmployeeID:    session.EmployeeID,
			EventType:     geofence.EventBulkCheckIn,
			RecordedAt:    now,
			LocationLat:   g.CenterLat,
			LocationLng:   g.CenterLng,
			Notes:         &eventNotes,
			AttendanceRef: &record.ID,
		})
		return err
	})
}
