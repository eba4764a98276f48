package location

import (
	"context"
	"time"
)

// SampleRepository persists raw GPS samples.
type SampleRepository interface {
	// Create inserts a new sample
	Create(ctx context.Context, sample Sample) (Sample, error)

	// GetByID retrieves a sample
	GetByID(ctx context.Context, id string) (Sample, error)

	// MarkEvaluated flips the evaluated flag after the engine has
	// processed the sample
	MarkEvaluated(ctx context.Context, id string) error

	// Watermark returns the greatest recorded_at among evaluated samples
	// for the employee, or nil if none exist. Restores the per-employee
	// ordering watermark after a restart.
	Watermark(ctx context.Context, employeeID string) (*time.Time, error)

	// LatestByEmployee returns the most recent sample by recorded_at
	LatestByEmployee(ctx context.Context, employeeID string) (Sample, error)
}

// RetryRepository is the dead-letter list for samples whose evaluation
// failed after they were persisted.
type RetryRepository interface {
	// Enqueue records a failed evaluation; repeated enqueues for the
	// same sample bump the attempt counter
	Enqueue(ctx context.Context, sampleID string, lastError string) error

	// List returns up to limit pending items, oldest first
	List(ctx context.Context, limit int) ([]RetryItem, error)

	// Remove deletes the item after a successful re-evaluation
	Remove(ctx context.Context, sampleID string) error
}
