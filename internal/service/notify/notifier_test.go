package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() (geofence.Event, geofence.Geofence) {
	event := geofence.Event{
		ID:          "ev-1",
		GeofenceID:  "fence-1",
		EmployeeID:  "emp-1",
		EventType:   geofence.EventEntry,
		RecordedAt:  time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC),
		LocationLat: 24.7136,
		LocationLng: 46.6753,
	}
	g := geofence.Geofence{ID: "fence-1", Name: "Warehouse"}
	return event, g
}

func TestWebhookNotifier_PostsPayload(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	event, g := testEvent()
	n := NewWebhookNotifier(server.URL)

	require.NoError(t, n.Notify(context.Background(), event, g))
	assert.Equal(t, "ev-1", received.EventID)
	assert.Equal(t, "entry", received.EventType)
	assert.Equal(t, "Warehouse", received.GeofenceName)
	assert.Equal(t, "2026-08-03T08:00:00Z", received.RecordedAt)
}

func TestWebhookNotifier_ServerErrorReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	event, g := testEvent()
	n := NewWebhookNotifier(server.URL)

	assert.Error(t, n.Notify(context.Background(), event, g))
}

func TestLogNotifierNeverFails(t *testing.T) {
	event, g := testEvent()
	assert.NoError(t, LogNotifier{}.Notify(context.Background(), event, g))
}
