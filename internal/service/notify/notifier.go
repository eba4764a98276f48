package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/go-resty/resty/v2"
)

// webhookPayload is the body posted to the configured webhook for each
// notifiable entry/exit event.
type webhookPayload struct {
	EventID             string  `json:"event_id"`
	EventType           string  `json:"event_type"`
	GeofenceID          string  `json:"geofence_id"`
	GeofenceName        string  `json:"geofence_name"`
	EmployeeID          string  `json:"employee_id"`
	RecordedAt          string  `json:"recorded_at"`
	LocationLat         float64 `json:"location_lat"`
	LocationLng         float64 `json:"location_lng"`
	DistanceFromCenterM float64 `json:"distance_from_center_m"`
}

// WebhookNotifier posts events to an external HTTP endpoint. The engine
// already swallows and logs failures, so delivery is best effort.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &WebhookNotifier{client: client, url: url}
}

// Notify implements geofence.Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event geofence.Event, g geofence.Geofence) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			EventID:             event.ID,
			EventType:           event.EventType,
			GeofenceID:          g.ID,
			GeofenceName:        g.Name,
			EmployeeID:          event.EmployeeID,
			RecordedAt:          event.RecordedAt.Format(time.RFC3339),
			LocationLat:         event.LocationLat,
			LocationLng:         event.LocationLng,
			DistanceFromCenterM: event.DistanceFromCenterM,
		}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post geofence notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("geofence notification rejected: %s", resp.Status())
	}

	return nil
}

// LogNotifier is the fallback when no webhook is configured: events with
// notify flags still leave a trace in the logs.
type LogNotifier struct{}

// Notify implements geofence.Notifier.
func (LogNotifier) Notify(ctx context.Context, event geofence.Event, g geofence.Geofence) error {
	slog.Info("geofence notification",
		"event_type", event.EventType,
		"geofence_id", g.ID,
		"geofence_name", g.Name,
		"employee_id", event.EmployeeID,
		"recorded_at", event.RecordedAt,
	)
	return nil
}
