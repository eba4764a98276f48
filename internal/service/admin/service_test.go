package admin

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/maps"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memGeofenceRepo struct {
	byID map[string]*geofence.Geofence
}

func newMemGeofenceRepo() *memGeofenceRepo {
	return &memGeofenceRepo{byID: make(map[string]*geofence.Geofence)}
}

func (m *memGeofenceRepo) Create(ctx context.Context, g geofence.Geofence) (geofence.Geofence, error) {
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	copied := g
	m.byID[g.ID] = &copied
	return g, nil
}

func (m *memGeofenceRepo) GetByID(ctx context.Context, id string) (geofence.Geofence, error) {
	g, ok := m.byID[id]
	if !ok {
		return geofence.Geofence{}, geofence.ErrGeofenceNotFound
	}
	return *g, nil
}

func (m *memGeofenceRepo) List(ctx context.Context, includeInactive bool) ([]geofence.Geofence, error) {
	var out []geofence.Geofence
	for _, g := range m.byID {
		if g.IsActive || includeInactive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGeofenceRepo) ListActive(ctx context.Context) ([]geofence.Geofence, error) {
	return m.List(ctx, false)
}

func (m *memGeofenceRepo) Update(ctx context.Context, req geofence.UpdateGeofenceRequest) error {
	g, ok := m.byID[req.ID]
	if !ok {
		return geofence.ErrGeofenceNotFound
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.RadiusM != nil {
		g.RadiusM = *req.RadiusM
	}
	if req.CenterLat != nil {
		g.CenterLat = *req.CenterLat
	}
	if req.CenterLng != nil {
		g.CenterLng = *req.CenterLng
	}
	return nil
}

func (m *memGeofenceRepo) SoftDelete(ctx context.Context, id string) error {
	g, ok := m.byID[id]
	if !ok {
		return geofence.ErrGeofenceNotFound
	}
	g.IsActive = false
	return nil
}

type memAssignmentRepo struct {
	geofence.AssignmentRepository

	assigned map[string][]string
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assigned: make(map[string][]string)}
}

func (m *memAssignmentRepo) Assign(ctx context.Context, geofenceID string, employeeIDs []string) error {
	for _, id := range employeeIDs {
		if !contains(m.assigned[geofenceID], id) {
			m.assigned[geofenceID] = append(m.assigned[geofenceID], id)
		}
	}
	return nil
}

func (m *memAssignmentRepo) Unassign(ctx context.Context, geofenceID, employeeID string) error {
	var kept []string
	for _, id := range m.assigned[geofenceID] {
		if id != employeeID {
			kept = append(kept, id)
		}
	}
	m.assigned[geofenceID] = kept
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type memSessionRepo struct {
	geofence.SessionRepository

	open   []geofence.Session
	closed []string
	notes  map[string]string
}

func (m *memSessionRepo) ListOpenByGeofence(ctx context.Context, geofenceID string) ([]geofence.Session, error) {
	return m.open, nil
}

func (m *memSessionRepo) CloseAdministratively(ctx context.Context, sessionID string, exitTime time.Time, durationMinutes int, notes string) error {
	if m.notes == nil {
		m.notes = make(map[string]string)
	}
	m.closed = append(m.closed, sessionID)
	m.notes[sessionID] = notes
	return nil
}

type memEmployeeRepo struct {
	employee.EmployeeRepository

	byID map[string]employee.Employee
}

func (m *memEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type fakeExtractor struct {
	lat, lng float64
	err      error
}

func (f *fakeExtractor) ExtractCoords(ctx context.Context, rawURL string) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.lat, f.lng, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc         geofence.AdminService
	geofences   *memGeofenceRepo
	assignments *memAssignmentRepo
	sessions    *memSessionRepo
	registry    *countingInvalidator
	extractor   *fakeExtractor
}

func newFixture(closeOnDelete bool) *fixture {
	f := &fixture{
		geofences:   newMemGeofenceRepo(),
		assignments: newMemAssignmentRepo(),
		sessions:    &memSessionRepo{},
		registry:    &countingInvalidator{},
		extractor:   &fakeExtractor{lat: 24.7136, lng: 46.6753},
	}
	employees := &memEmployeeRepo{byID: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Status: employee.StatusActive},
		"emp-2": {ID: "emp-2", Status: employee.StatusActive},
	}}
	f.svc = NewAdminService(
		f.geofences, f.assignments, f.sessions, employees,
		f.extractor, f.registry, passthroughTx, closeOnDelete,
	)
	return f
}

func validCreate() geofence.CreateGeofenceRequest {
	return geofence.CreateGeofenceRequest{
		Name:         "Warehouse",
		Color:        "#FF8800",
		CenterLat:    24.7136,
		CenterLng:    46.6753,
		RadiusM:      150,
		DepartmentID: "dept-1",
	}
}

func TestCreateGeofence(t *testing.T) {
	f := newFixture(false)

	req := validCreate()
	req.AssignedEmployeeIDs = []string{"emp-1"}

	resp, err := f.svc.CreateGeofence(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.IsActive)
	assert.Equal(t, []string{"emp-1"}, resp.AssignedEmployeeIDs)
	assert.Equal(t, []string{"emp-1"}, f.assignments.assigned[resp.ID])
	assert.Equal(t, 1, f.registry.calls)
}

func TestCreateGeofence_Defaults(t *testing.T) {
	f := newFixture(false)

	req := validCreate()
	req.Color = ""
	req.Type = ""

	resp, err := f.svc.CreateGeofence(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, defaultColor, resp.Color)
	assert.Equal(t, defaultType, resp.Type)
}

func TestCreateGeofence_ValidationFailures(t *testing.T) {
	f := newFixture(false)

	tests := []struct {
		name   string
		mutate func(*geofence.CreateGeofenceRequest)
		field  string
	}{
		{"missing name", func(r *geofence.CreateGeofenceRequest) { r.Name = "" }, "name"},
		{"radius too small", func(r *geofence.CreateGeofenceRequest) { r.RadiusM = 5 }, "radius_m"},
		{"latitude out of range", func(r *geofence.CreateGeofenceRequest) { r.CenterLat = 91 }, "center_lat"},
		{"bad color", func(r *geofence.CreateGeofenceRequest) { r.Color = "red" }, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)

			_, err := f.svc.CreateGeofence(context.Background(), req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestCreateGeofence_UnknownAssignee(t *testing.T) {
	f := newFixture(false)

	req := validCreate()
	req.AssignedEmployeeIDs = []string{"emp-missing"}

	_, err := f.svc.CreateGeofence(context.Background(), req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdateGeofence(t *testing.T) {
	f := newFixture(false)
	created, err := f.svc.CreateGeofence(context.Background(), validCreate())
	require.NoError(t, err)
	f.registry.calls = 0

	radius := 300
	resp, err := f.svc.UpdateGeofence(context.Background(), geofence.UpdateGeofenceRequest{
		ID:      created.ID,
		RadiusM: &radius,
	})
	require.NoError(t, err)
	assert.Equal(t, 300, resp.RadiusM)
	assert.Equal(t, "Warehouse", resp.Name)
	assert.Equal(t, 1, f.registry.calls)
}

func TestDeleteGeofence_KeepsSessionsByDefault(t *testing.T) {
	f := newFixture(false)
	created, err := f.svc.CreateGeofence(context.Background(), validCreate())
	require.NoError(t, err)

	f.sessions.open = []geofence.Session{{ID: "sess-1", EntryTime: time.Now().UTC().Add(-time.Hour), IsActive: true}}

	require.NoError(t, f.svc.DeleteGeofence(context.Background(), created.ID))

	g, err := f.geofences.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, g.IsActive)
	assert.Empty(t, f.sessions.closed)
}

func TestDeleteGeofence_ClosesSessionsWhenEnabled(t *testing.T) {
	f := newFixture(true)
	created, err := f.svc.CreateGeofence(context.Background(), validCreate())
	require.NoError(t, err)

	f.sessions.open = []geofence.Session{{ID: "sess-1", EntryTime: time.Now().UTC().Add(-time.Hour), IsActive: true}}

	require.NoError(t, f.svc.DeleteGeofence(context.Background(), created.ID))
	require.Len(t, f.sessions.closed, 1)
	assert.Equal(t, "geofence_deactivated", f.sessions.notes["sess-1"])
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(false)
	created, err := f.svc.CreateGeofence(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = f.svc.AssignEmployees(context.Background(), geofence.AssignEmployeesRequest{
		GeofenceID:  created.ID,
		EmployeeIDs: []string{"emp-1", "emp-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, f.assignments.assigned[created.ID])

	require.NoError(t, f.svc.UnassignEmployee(context.Background(), created.ID, "emp-1"))
	assert.Equal(t, []string{"emp-2"}, f.assignments.assigned[created.ID])
}

func TestExtractCoordsFromMapURL(t *testing.T) {
	f := newFixture(false)

	resp, err := f.svc.ExtractCoordsFromMapURL(context.Background(), geofence.ExtractCoordsRequest{
		URL: "https://www.google.com/maps/@24.7136,46.6753,17z",
	})
	require.NoError(t, err)
	assert.InDelta(t, 24.7136, resp.Latitude, 1e-9)
	assert.InDelta(t, 46.6753, resp.Longitude, 1e-9)
}

func TestExtractCoordsFromMapURL_NoCoordinates(t *testing.T) {
	f := newFixture(false)
	f.extractor.err = maps.ErrNoCoordinates

	_, err := f.svc.ExtractCoordsFromMapURL(context.Background(), geofence.ExtractCoordsRequest{
		URL: "https://example.com/nothing",
	})
	assert.ErrorIs(t, err, maps.ErrNoCoordinates)
}
