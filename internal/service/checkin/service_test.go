package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/attendance"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeofenceRepo struct {
	geofence.GeofenceRepository

	byID map[string]geofence.Geofence
}

func (f *fakeGeofenceRepo) GetByID(ctx context.Context, id string) (geofence.Geofence, error) {
	g, ok := f.byID[id]
	if !ok {
		return geofence.Geofence{}, geofence.ErrGeofenceNotFound
	}
	return g, nil
}

type fakeSessionRepo struct {
	geofence.SessionRepository

	open []geofence.Session
}

func (f *fakeSessionRepo) ListOpenByGeofence(ctx context.Context, geofenceID string) ([]geofence.Session, error) {
	return f.open, nil
}

type fakeEventRepo struct {
	geofence.EventRepository

	events []geofence.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, e geofence.Event) (geofence.Event, error) {
	f.events = append(f.events, e)
	return e, nil
}

type fakeAttendanceRepo struct {
	records    []attendance.Record
	checkedIn  map[string]bool
	createErr  map[string]error
	existsErrs map[string]error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		checkedIn:  make(map[string]bool),
		createErr:  make(map[string]error),
		existsErrs: make(map[string]error),
	}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := f.createErr[r.EmployeeID]; err != nil {
		return attendance.Record{}, err
	}
	f.records = append(f.records, r)
	f.checkedIn[r.EmployeeID] = true
	return r, nil
}

func (f *fakeAttendanceRepo) ExistsSince(ctx context.Context, employeeID string, since time.Time) (bool, error) {
	if err := f.existsErrs[employeeID]; err != nil {
		return false, err
	}
	return f.checkedIn[employeeID], nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func openSession(employeeID string) geofence.Session {
	eventID := "ev-" + employeeID
	return geofence.Session{
		ID:           "sess-" + employeeID,
		GeofenceID:   "fence-1",
		EmployeeID:   employeeID,
		EntryEventID: &eventID,
		EntryTime:    time.Date(2026, 8, 3, 7, 45, 0, 0, time.UTC),
		IsActive:     true,
	}
}

func TestBulkCheckIn_SplitsOutcomes(t *testing.T) {
	// emp-1: assigned, inside, not yet checked in  -> checked_in
	// emp-2: assigned, inside, already checked in  -> already_checked_in
	// emp-3: inside but not assigned               -> not_assigned
	g := geofence.Geofence{
		ID:                  "fence-1",
		Name:                "Warehouse",
		IsActive:            true,
		AssignedEmployeeIDs: []string{"emp-1", "emp-2"},
	}
	sessions := &fakeSessionRepo{open: []geofence.Session{
		openSession("emp-1"), openSession("emp-2"), openSession("emp-3"),
	}}
	attendances := newFakeAttendanceRepo()
	attendances.checkedIn["emp-2"] = true
	events := &fakeEventRepo{}

	svc := NewCheckInService(
		&fakeGeofenceRepo{byID: map[string]geofence.Geofence{"fence-1": g}},
		sessions, events, attendances, passthroughTx,
	)

	result, err := svc.BulkCheckIn(context.Background(), "fence-1", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.CheckedIn)
	assert.Equal(t, 1, result.AlreadyCheckedIn)
	assert.Equal(t, 1, result.NotAssigned)
	assert.Equal(t, 0, result.Errors)

	// One attendance record, linked from one bulk_check_in event.
	require.Len(t, attendances.records, 1)
	assert.Equal(t, "emp-1", attendances.records[0].EmployeeID)
	require.Len(t, events.events, 1)
	assert.Equal(t, geofence.EventBulkCheckIn, events.events[0].EventType)
	assert.Equal(t, attendances.records[0].ID, *events.events[0].AttendanceRef)
}

func TestBulkCheckIn_PerEmployeeFailureIsCounted(t *testing.T) {
	g := geofence.Geofence{
		ID:                  "fence-1",
		IsActive:            true,
		AssignedEmployeeIDs: []string{"emp-1", "emp-2"},
	}
	sessions := &fakeSessionRepo{open: []geofence.Session{
		openSession("emp-1"), openSession("emp-2"),
	}}
	attendances := newFakeAttendanceRepo()
	attendances.createErr["emp-1"] = errors.New("constraint violation")

	svc := NewCheckInService(
		&fakeGeofenceRepo{byID: map[string]geofence.Geofence{"fence-1": g}},
		sessions, &fakeEventRepo{}, attendances, passthroughTx,
	)

	result, err := svc.BulkCheckIn(context.Background(), "fence-1", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.CheckedIn)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, attendances.records, 1)
	assert.Equal(t, "emp-2", attendances.records[0].EmployeeID)
}

func TestBulkCheckIn_EmptyGeofence(t *testing.T) {
	g := geofence.Geofence{ID: "fence-1", IsActive: true}
	svc := NewCheckInService(
		&fakeGeofenceRepo{byID: map[string]geofence.Geofence{"fence-1": g}},
		&fakeSessionRepo{}, &fakeEventRepo{}, newFakeAttendanceRepo(), passthroughTx,
	)

	result, err := svc.BulkCheckIn(context.Background(), "fence-1", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, geofence.BulkCheckInResult{}, result)
}

func TestBulkCheckIn_UnknownGeofence(t *testing.T) {
	svc := NewCheckInService(
		&fakeGeofenceRepo{byID: map[string]geofence.Geofence{}},
		&fakeSessionRepo{}, &fakeEventRepo{}, newFakeAttendanceRepo(), passthroughTx,
	)

	_, err := svc.BulkCheckIn(context.Background(), "fence-missing", "admin-1")
	assert.ErrorIs(t, err, geofence.ErrGeofenceNotFound)
}

func TestBulkCheckIn_InactiveGeofence(t *testing.T) {
	g := geofence.Geofence{ID: "fence-1", IsActive: false}
	svc := NewCheckInService(
		&fakeGeofenceRepo{byID: map[string]geofence.Geofence{"fence-1": g}},
		&fakeSessionRepo{}, &fakeEventRepo{}, newFakeAttendanceRepo(), passthroughTx,
	)

	_, err := svc.BulkCheckIn(context.Background(), "fence-1", "admin-1")
	assert.ErrorIs(t, err, geofence.ErrGeofenceInactive)
}
