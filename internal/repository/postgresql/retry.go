package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/location"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/google/uuid"
)

type retryRepository struct {
	db *database.DB
}

// Enqueue implements location.RetryRepository.
func (r *retryRepository) Enqueue(ctx context.Context, sampleID string, lastError string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO location_sample_retries (id, sample_id, last_error, attempts)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (sample_id) DO UPDATE
		SET last_error = EXCLUDED.last_error,
			attempts = location_sample_retries.attempts + 1,
			updated_at = $4
	`

	if _, err := q.Exec(ctx, query, uuid.New().String(), sampleID, lastError, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to enqueue sample retry: %w", err)
	}

	return nil
}

// List implements location.RetryRepository.
func (r *retryRepository) List(ctx context.Context, limit int) ([]location.RetryItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, sample_id, last_error, attempts, created_at, updated_at
		FROM location_sample_retries
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample retry queue: %w", err)
	}
	defer rows.Close()

	var items []location.RetryItem
	for rows.Next() {
		var item location.RetryItem
		if err := rows.Scan(&item.ID, &item.SampleID, &item.LastError, &item.Attempts, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample retry item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Remove implements location.RetryRepository.
func (r *retryRepository) Remove(ctx context.Context, sampleID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM location_sample_retries WHERE sample_id = $1`

	if _, err := q.Exec(ctx, query, sampleID); err != nil {
		return fmt.Errorf("failed to remove sample retry item: %w", err)
	}

	return nil
}

func NewRetryRepository(db *database.DB) location.RetryRepository {
	return &retryRepository{db: db}
}
