package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngestService struct {
	result location.IngestResult
	err    error
}

func (s *stubIngestService) Ingest(ctx context.Context, apiKey string, req location.IngestRequest) (location.IngestResult, error) {
	if s.err != nil {
		return location.IngestResult{}, s.err
	}
	return s.result, nil
}

func (s *stubIngestService) LastLocation(ctx context.Context, employeeID string) (location.SampleResponse, error) {
	return location.SampleResponse{}, location.ErrSampleNotFound
}

func postLocations(t *testing.T, svc location.IngestService, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	handler := NewLocationHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(locationKeyHeader, "key-under-test")

	rec := httptest.NewRecorder()
	handler.Ingest(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestIngestEndpoint_Success(t *testing.T) {
	svc := &stubIngestService{result: location.IngestResult{SampleID: "sample-1"}}

	rec, body := postLocations(t, svc, `{"employee_id":"emp-1","latitude":24.7,"longitude":46.6}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "sample-1", body["sample_id"])
}

func TestIngestEndpoint_MalformedJSON(t *testing.T) {
	rec, body := postLocations(t, &stubIngestService{}, `{"employee_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "invalid_input", body["error"])
}

func TestIngestEndpoint_WrongKey(t *testing.T) {
	svc := &stubIngestService{err: location.ErrUnauthenticated}

	rec, body := postLocations(t, svc, `{"employee_id":"emp-1","latitude":24.7,"longitude":46.6}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", body["error"])
}

func TestIngestEndpoint_UnknownEmployee(t *testing.T) {
	svc := &stubIngestService{err: employee.ErrEmployeeNotFound}

	rec, body := postLocations(t, svc, `{"employee_id":"emp-404","latitude":24.7,"longitude":46.6}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "employee_not_found", body["error"])
}

func TestIngestEndpoint_ValidationDetails(t *testing.T) {
	var req location.IngestRequest
	require.NoError(t, json.Unmarshal([]byte(`{"employee_id":"emp-1","longitude":46.6}`), &req))
	verr := req.Validate()
	require.Error(t, verr)

	svc := &stubIngestService{err: verr}
	rec, body := postLocations(t, svc, `{"employee_id":"emp-1","longitude":46.6}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", body["error"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "latitude")
}
