package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sampleRepository struct {
	db *database.DB
}

const sampleColumns = `
	id, employee_id, lat, lng, accuracy_m, speed_kmh, source,
	recorded_at, received_at, vehicle_ref, evaluated, evaluated_at
`

func scanSample(row pgx.Row, s *location.Sample) error {
	return row.Scan(
		&s.ID, &s.EmployeeID, &s.Lat, &s.Lng, &s.AccuracyM, &s.SpeedKmh, &s.Source,
		&s.RecordedAt, &s.ReceivedAt, &s.VehicleRef, &s.Evaluated, &s.EvaluatedAt,
	)
}

// Create implements location.SampleRepository.
func (r *sampleRepository) Create(ctx context.Context, sample location.Sample) (location.Sample, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO location_samples (
			id, employee_id, lat, lng, accuracy_m, speed_kmh, source,
			recorded_at, received_at, vehicle_ref
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := q.Exec(ctx, query,
		sample.ID, sample.EmployeeID, sample.Lat, sample.Lng, sample.AccuracyM, sample.SpeedKmh,
		sample.Source, sample.RecordedAt, sample.ReceivedAt, sample.VehicleRef,
	)
	if err != nil {
		return location.Sample{}, fmt.Errorf("failed to create location sample: %w", err)
	}

	return sample, nil
}

// GetByID implements location.SampleRepository.
func (r *sampleRepository) GetByID(ctx context.Context, id string) (location.Sample, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sampleColumns + ` FROM location_samples WHERE id = $1`

	var s location.Sample
	if err := scanSample(q.QueryRow(ctx, query, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Sample{}, location.ErrSampleNotFound
		}
		return location.Sample{}, fmt.Errorf("failed to get location sample by ID: %w", err)
	}

	return s, nil
}

// MarkEvaluated implements location.SampleRepository.
func (r *sampleRepository) MarkEvaluated(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE location_samples SET evaluated = TRUE, evaluated_at = $2 WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark sample evaluated: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return location.ErrSampleNotFound
	}

	return nil
}

// Watermark implements location.SampleRepository.
func (r *sampleRepository) Watermark(ctx context.Context, employeeID string) (*time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT MAX(recorded_at)
		FROM location_samples
		WHERE employee_id = $1 AND evaluated = TRUE
	`

	var watermark *time.Time
	if err := q.QueryRow(ctx, query, employeeID).Scan(&watermark); err != nil {
		return nil, fmt.Errorf("failed to get sample watermark: %w", err)
	}

	return watermark, nil
}

// LatestByEmployee implements location.SampleRepository.
func (r *sampleRepository) LatestByEmployee(ctx context.Context, employeeID string) (location.Sample, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sampleColumns + `
		FROM location_samples
		WHERE employee_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var s location.Sample
	if err := scanSample(q.QueryRow(ctx, query, employeeID), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Sample{}, location.ErrSampleNotFound
		}
		return location.Sample{}, fmt.Errorf("failed to get latest sample: %w", err)
	}

	return s, nil
}

func NewSampleRepository(db *database.DB) location.SampleRepository {
	return &sampleRepository{db: db}
}
