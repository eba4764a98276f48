package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "shared-tracker-key"

type fakeSampleRepo struct {
	location.SampleRepository

	created []location.Sample
	latest  map[string]location.Sample
}

func (f *fakeSampleRepo) Create(ctx context.Context, s location.Sample) (location.Sample, error) {
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSampleRepo) LatestByEmployee(ctx context.Context, employeeID string) (location.Sample, error) {
	s, ok := f.latest[employeeID]
	if !ok {
		return location.Sample{}, location.ErrSampleNotFound
	}
	return s, nil
}

type fakeRetryRepo struct {
	location.RetryRepository

	enqueued map[string]string
}

func (f *fakeRetryRepo) Enqueue(ctx context.Context, sampleID, lastError string) error {
	if f.enqueued == nil {
		f.enqueued = make(map[string]string)
	}
	f.enqueued[sampleID] = lastError
	return nil
}

type fakeEmployeeRepo struct {
	byID        map[string]employee.Employee
	byJobNumber map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByJobNumber(ctx context.Context, jobNumber string) (employee.Employee, error) {
	e, ok := f.byJobNumber[jobNumber]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type fakeEvaluator struct {
	samples []location.Sample
	err     error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, s location.Sample) error {
	if f.err != nil {
		return f.err
	}
	f.samples = append(f.samples, s)
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func newTestService() (location.IngestService, *fakeSampleRepo, *fakeRetryRepo, *fakeEvaluator) {
	jobNumber := "JN-100"
	emp := employee.Employee{ID: "emp-1", JobNumber: &jobNumber, FullName: "Sara Al-Qahtani", Status: employee.StatusActive}
	employees := &fakeEmployeeRepo{
		byID:        map[string]employee.Employee{"emp-1": emp},
		byJobNumber: map[string]employee.Employee{"JN-100": emp},
	}
	samples := &fakeSampleRepo{latest: make(map[string]location.Sample)}
	retries := &fakeRetryRepo{}
	evaluator := &fakeEvaluator{}
	svc := NewIngestService(samples, retries, employees, evaluator, testKey)
	return svc, samples, retries, evaluator
}

func validRequest() location.IngestRequest {
	return location.IngestRequest{
		EmployeeID: "emp-1",
		Latitude:   floatPtr(24.7136),
		Longitude:  floatPtr(46.6753),
	}
}

func TestIngest_ValidSampleIsStoredAndEvaluated(t *testing.T) {
	svc, samples, _, evaluator := newTestService()

	result, err := svc.Ingest(context.Background(), testKey, validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, result.SampleID)

	require.Len(t, samples.created, 1)
	assert.Equal(t, "emp-1", samples.created[0].EmployeeID)
	assert.Equal(t, "app", samples.created[0].Source)
	require.Len(t, evaluator.samples, 1)
	assert.Equal(t, result.SampleID, evaluator.samples[0].ID)
}

func TestIngest_WrongKeyRejected(t *testing.T) {
	svc, samples, _, _ := newTestService()

	_, err := svc.Ingest(context.Background(), "wrong-key", validRequest())
	assert.ErrorIs(t, err, location.ErrUnauthenticated)
	assert.Empty(t, samples.created)
}

func TestIngest_MissingCoordinatesRejected(t *testing.T) {
	svc, samples, _, _ := newTestService()

	req := validRequest()
	req.Latitude = nil

	_, err := svc.Ingest(context.Background(), testKey, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "latitude", verrs[0].Field)
	assert.Empty(t, samples.created)
}

func TestIngest_CoordinateRangeRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.Longitude = floatPtr(200)

	_, err := svc.Ingest(context.Background(), testKey, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestIngest_UnknownEmployeeRejected(t *testing.T) {
	svc, samples, _, _ := newTestService()

	req := validRequest()
	req.EmployeeID = "emp-missing"

	_, err := svc.Ingest(context.Background(), testKey, req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.Empty(t, samples.created)
}

func TestIngest_ResolvesByJobNumber(t *testing.T) {
	svc, samples, _, _ := newTestService()

	req := validRequest()
	req.EmployeeID = ""
	req.JobNumber = "JN-100"

	_, err := svc.Ingest(context.Background(), testKey, req)
	require.NoError(t, err)
	require.Len(t, samples.created, 1)
	assert.Equal(t, "emp-1", samples.created[0].EmployeeID)
}

func TestIngest_NumericEmployeeIDOnWire(t *testing.T) {
	// Trackers send ids as JSON numbers; FlexibleID normalizes them.
	var req location.IngestRequest
	body := []byte(`{"employee_id": 12345, "latitude": 24.7, "longitude": 46.6}`)
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, location.FlexibleID("12345"), req.EmployeeID)
}

func TestIngest_RecordedAtDefaultsToNow(t *testing.T) {
	svc, samples, _, _ := newTestService()

	before := time.Now().UTC()
	_, err := svc.Ingest(context.Background(), testKey, validRequest())
	require.NoError(t, err)
	after := time.Now().UTC()

	got := samples.created[0].RecordedAt
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestIngest_RecordedAtParsed(t *testing.T) {
	svc, samples, _, _ := newTestService()

	req := validRequest()
	req.RecordedAt = strPtr("2026-08-03T08:15:00+03:00")

	_, err := svc.Ingest(context.Background(), testKey, req)
	require.NoError(t, err)

	want := time.Date(2026, 8, 3, 5, 15, 0, 0, time.UTC)
	assert.True(t, samples.created[0].RecordedAt.Equal(want))
}

func TestIngest_EvaluationFailureStillAccepts(t *testing.T) {
	svc, samples, retries, evaluator := newTestService()
	evaluator.err = errors.New("registry unavailable")

	result, err := svc.Ingest(context.Background(), testKey, validRequest())
	require.NoError(t, err)

	require.Len(t, samples.created, 1)
	assert.Contains(t, retries.enqueued, result.SampleID)
	assert.Equal(t, "registry unavailable", retries.enqueued[result.SampleID])
}

func TestIngest_InactiveEmployeeSkipsEvaluation(t *testing.T) {
	jobNumber := "JN-200"
	emp := employee.Employee{ID: "emp-2", JobNumber: &jobNumber, Status: employee.StatusOnLeave}
	employees := &fakeEmployeeRepo{byID: map[string]employee.Employee{"emp-2": emp}}
	samples := &fakeSampleRepo{}
	evaluator := &fakeEvaluator{}
	svc := NewIngestService(samples, &fakeRetryRepo{}, employees, evaluator, testKey)

	req := validRequest()
	req.EmployeeID = "emp-2"

	_, err := svc.Ingest(context.Background(), testKey, req)
	require.NoError(t, err)
	assert.Len(t, samples.created, 1)
	assert.Empty(t, evaluator.samples)
}

func TestLastLocation(t *testing.T) {
	svc, samples, _, _ := newTestService()
	at := time.Date(2026, 8, 3, 9, 30, 0, 0, time.UTC)
	samples.latest["emp-1"] = location.Sample{
		ID:         "s-last",
		EmployeeID: "emp-1",
		Lat:        24.7,
		Lng:        46.6,
		Source:     "tracker",
		RecordedAt: at,
		ReceivedAt: at,
	}

	resp, err := svc.LastLocation(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "s-last", resp.ID)
	assert.Equal(t, "2026-08-03T09:30:00Z", resp.RecordedAt)
}

func TestLastLocation_UnknownEmployee(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.LastLocation(context.Background(), "emp-missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
