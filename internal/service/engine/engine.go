package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/geo"
	"github.com/google/uuid"
)

// TxRunner executes fn inside one database transaction. In production it
// is postgresql.WithTransaction bound to the pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// SnapshotProvider is the registry as the engine sees it.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) ([]geofence.Geofence, uint64, error)
}

type pairKey struct {
	employeeID string
	geofenceID string
}

// Engine derives entry/exit transitions from location samples and
// maintains sessions. All samples of one employee are processed serially;
// samples of different employees run concurrently.
type Engine struct {
	registry SnapshotProvider
	samples  location.SampleRepository
	events   geofence.EventRepository
	sessions geofence.SessionRepository
	retries  location.RetryRepository
	notifier geofence.Notifier
	tx       TxRunner

	syntheticGap time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	stateMu    sync.Mutex
	inside     map[pairKey]bool
	seeded     map[pairKey]bool
	watermarks map[string]time.Time
}

func NewEngine(
	registry SnapshotProvider,
	samples location.SampleRepository,
	events geofence.EventRepository,
	sessions geofence.SessionRepository,
	retries location.RetryRepository,
	notifier geofence.Notifier,
	tx TxRunner,
	syntheticGap time.Duration,
) *Engine {
	return &Engine{
		registry:     registry,
		samples:      samples,
		events:       events,
		sessions:     sessions,
		retries:      retries,
		notifier:     notifier,
		tx:           tx,
		syntheticGap: syntheticGap,
		locks:        make(map[string]*sync.Mutex),
		inside:       make(map[pairKey]bool),
		seeded:       make(map[pairKey]bool),
		watermarks:   make(map[string]time.Time),
	}
}

// Evaluate implements location.Evaluator. The sample must already be
// persisted; Evaluate decides transitions against every active geofence
// and marks the sample evaluated when done.
func (e *Engine) Evaluate(ctx context.Context, sample location.Sample) error {
	lock := e.employeeLock(sample.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	watermark, err := e.loadWatermark(ctx, sample.EmployeeID)
	if err != nil {
		return err
	}

	// Out-of-order sample: it stays persisted for audit but produces no
	// transitions. Equal timestamps re-evaluate and settle as no-ops.
	if watermark != nil && sample.RecordedAt.Before(*watermark) {
		slog.Debug("sample older than watermark, skipping evaluation",
			"sample_id", sample.ID,
			"employee_id", sample.EmployeeID,
			"recorded_at", sample.RecordedAt,
			"watermark", *watermark,
		)
		return e.finishSample(ctx, sample)
	}

	fences, _, err := e.registry.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot geofence registry: %w", err)
	}

	for i := range fences {
		if err := e.evaluateFence(ctx, sample, &fences[i]); err != nil {
			return err
		}
	}

	return e.finishSample(ctx, sample)
}

func (e *Engine) evaluateFence(ctx context.Context, sample location.Sample, g *geofence.Geofence) error {
	distance := geo.HaversineDistance(sample.Lat, sample.Lng, g.CenterLat, g.CenterLng)
	nowInside := distance <= float64(g.RadiusM)

	wasInside, err := e.pairState(ctx, sample.EmployeeID, g.ID)
	if err != nil {
		return err
	}

	if nowInside == wasInside {
		return nil
	}

	var event geofence.Event
	if nowInside {
		event, err = e.recordEntry(ctx, sample, g, distance)
	} else {
		event, err = e.recordExit(ctx, sample, g, distance)
	}
	if err != nil {
		return err
	}

	e.setPairState(sample.EmployeeID, g.ID, nowInside)
	e.dispatchNotification(event, *g)

	return nil
}

// recordEntry writes the entry event and opens (or re-points) the
// session in one transaction.
func (e *Engine) recordEntry(ctx context.Context, sample location.Sample, g *geofence.Geofence, distance float64) (geofence.Event, error) {
	event := geofence.Event{
		ID:                  uuid.New().String(),
		GeofenceID:          g.ID,
		EmployeeID:          sample.EmployeeID,
		EventType:           geofence.EventEntry,
		RecordedAt:          sample.RecordedAt,
		LocationLat:         sample.Lat,
		LocationLng:         sample.Lng,
		DistanceFromCenterM: distance,
	}

	err := e.tx(ctx, func(txCtx context.Context) error {
		created, err := e.events.Create(txCtx, event)
		if err != nil {
			return err
		}
		event = created

		open, err := e.sessions.GetOpen(txCtx, sample.EmployeeID, g.ID)
		if err != nil {
			return err
		}

		if open != nil {
			// A session is already open for the pair: the previous exit
			// was never observed. Collapse onto the existing session
			// rather than stacking a second one.
			slog.Warn("entry with session already open, collapsing",
				"employee_id", sample.EmployeeID,
				"geofence_id", g.ID,
				"session_id", open.ID,
			)
			return e.sessions.UpdateEntry(txCtx, open.ID, event.ID, sample.RecordedAt)
		}

		entryEventID := event.ID
		_, err = e.sessions.Create(txCtx, geofence.Session{
			ID:           uuid.New().String(),
			GeofenceID:   g.ID,
			EmployeeID:   sample.EmployeeID,
			EntryEventID: &entryEventID,
			EntryTime:    sample.RecordedAt,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return geofence.Event{}, fmt.Errorf("failed to record entry transition: %w", err)
	}

	return event, nil
}

// recordExit writes the exit event and closes the open session. An exit
// with no open session gets a synthetic closed session whose entry time
// is fabricated syntheticGap before the exit.
func (e *Engine) recordExit(ctx context.Context, sample location.Sample, g *geofence.Geofence, distance float64) (geofence.Event, error) {
	event := geofence.Event{
		ID:                  uuid.New().String(),
		GeofenceID:          g.ID,
		EmployeeID:          sample.EmployeeID,
		EventType:           geofence.EventExit,
		RecordedAt:          sample.RecordedAt,
		LocationLat:         sample.Lat,
		LocationLng:         sample.Lng,
		DistanceFromCenterM: distance,
	}

	err := e.tx(ctx, func(txCtx context.Context) error {
		created, err := e.events.Create(txCtx, event)
		if err != nil {
			return err
		}
		event = created

		open, err := e.sessions.GetOpen(txCtx, sample.EmployeeID, g.ID)
		if err != nil {
			return err
		}

		if open != nil {
			duration := durationMinutes(open.EntryTime, sample.RecordedAt)
			return e.sessions.Close(txCtx, open.ID, event.ID, sample.RecordedAt, duration)
		}

		slog.Warn("exit without open session, creating synthetic session",
			"employee_id", sample.EmployeeID,
			"geofence_id", g.ID,
			"recorded_at", sample.RecordedAt,
		)

		entryTime := sample.RecordedAt.Add(-e.syntheticGap)
		exitTime := sample.RecordedAt
		exitEventID := event.ID
		duration := durationMinutes(entryTime, exitTime)
		notes := "orphan_exit"
		_, err = e.sessions.Create(txCtx, geofence.Session{
			ID:              uuid.New().String(),
			GeofenceID:      g.ID,
			EmployeeID:      sample.EmployeeID,
			ExitEventID:     &exitEventID,
			EntryTime:       entryTime,
			ExitTime:        &exitTime,
			DurationMinutes: &duration,
			Notes:           &notes,
		})
		return err
	})
	if err != nil {
		return geofence.Event{}, fmt.Errorf("failed to record exit transition: %w", err)
	}

	return event, nil
}

func (e *Engine) finishSample(ctx context.Context, sample location.Sample) error {
	if err := e.samples.MarkEvaluated(ctx, sample.ID); err != nil {
		return fmt.Errorf("failed to mark sample evaluated: %w", err)
	}

	e.stateMu.Lock()
	if current, ok := e.watermarks[sample.EmployeeID]; !ok || sample.RecordedAt.After(current) {
		e.watermarks[sample.EmployeeID] = sample.RecordedAt
	}
	e.stateMu.Unlock()

	return nil
}

// RetryFailed re-evaluates samples from the dead-letter list. Called by
// the cron scheduler; committed transitions from the failed run settle as
// no-ops because pair state already reflects them.
func (e *Engine) RetryFailed(ctx context.Context, limit int) {
	items, err := e.retries.List(ctx, limit)
	if err != nil {
		slog.Error("failed to list sample retries", "error", err)
		return
	}

	for _, item := range items {
		sample, err := e.samples.GetByID(ctx, item.SampleID)
		if err != nil {
			slog.Error("failed to load sample for retry",
				"sample_id", item.SampleID, "error", err)
			continue
		}

		if err := e.Evaluate(ctx, sample); err != nil {
			slog.Warn("sample re-evaluation failed",
				"sample_id", item.SampleID,
				"attempts", item.Attempts,
				"error", err,
			)
			if enqErr := e.retries.Enqueue(ctx, item.SampleID, err.Error()); enqErr != nil {
				slog.Error("failed to bump sample retry", "sample_id", item.SampleID, "error", enqErr)
			}
			continue
		}

		if err := e.retries.Remove(ctx, item.SampleID); err != nil {
			slog.Error("failed to remove sample retry", "sample_id", item.SampleID, "error", err)
		}
	}
}

// pairState returns whether the employee was inside the geofence at last
// evaluation. Unknown pairs are seeded from open-session existence so a
// restart does not re-emit entries for employees already inside.
func (e *Engine) pairState(ctx context.Context, employeeID, geofenceID string) (bool, error) {
	key := pairKey{employeeID: employeeID, geofenceID: geofenceID}

	e.stateMu.Lock()
	if e.seeded[key] {
		inside := e.inside[key]
		e.stateMu.Unlock()
		return inside, nil
	}
	e.stateMu.Unlock()

	open, err := e.sessions.GetOpen(ctx, employeeID, geofenceID)
	if err != nil {
		return false, fmt.Errorf("failed to seed pair state: %w", err)
	}

	inside := open != nil
	e.setPairState(employeeID, geofenceID, inside)
	return inside, nil
}

func (e *Engine) setPairState(employeeID, geofenceID string, inside bool) {
	key := pairKey{employeeID: employeeID, geofenceID: geofenceID}
	e.stateMu.Lock()
	e.inside[key] = inside
	e.seeded[key] = true
	e.stateMu.Unlock()
}

func (e *Engine) loadWatermark(ctx context.Context, employeeID string) (*time.Time, error) {
	e.stateMu.Lock()
	if wm, ok := e.watermarks[employeeID]; ok {
		e.stateMu.Unlock()
		return &wm, nil
	}
	e.stateMu.Unlock()

	wm, err := e.samples.Watermark(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sample watermark: %w", err)
	}
	if wm != nil {
		e.stateMu.Lock()
		e.watermarks[employeeID] = *wm
		e.stateMu.Unlock()
	}
	return wm, nil
}

func (e *Engine) employeeLock(employeeID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[employeeID] = lock
	}
	return lock
}

// dispatchNotification runs post-commit; a failed notification never
// fails the transition.
func (e *Engine) dispatchNotification(event geofence.Event, g geofence.Geofence) {
	if e.notifier == nil {
		return
	}
	if event.EventType == geofence.EventEntry && !g.NotifyOnEntry {
		return
	}
	if event.EventType == geofence.EventExit && !g.NotifyOnExit {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.notifier.Notify(ctx, event, g); err != nil {
		slog.Warn("geofence notification failed",
			"event_id", event.ID,
			"geofence_id", g.ID,
			"event_type", event.EventType,
			"error", err,
		)
	}
}

// durationMinutes rounds a session length up to whole minutes, so even a
// one-second visit counts as one minute.
func durationMinutes(entry, exit time.Time) int {
	d := exit.Sub(entry)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
