package location

import "time"

// Sample is one GPS reading. Immutable once persisted; only the
// evaluated flag flips when the engine has processed it.
type Sample struct {
	ID          string
	EmployeeID  string
	Lat         float64
	Lng         float64
	AccuracyM   *float64
	SpeedKmh    *float64
	Source      string
	RecordedAt  time.Time
	ReceivedAt  time.Time
	VehicleRef  *string
	Evaluated   bool
	EvaluatedAt *time.Time
}

// RetryItem is a persisted sample whose evaluation failed; the retry
// worker re-feeds it to the engine until it succeeds.
type RetryItem struct {
	ID        string
	SampleID  string
	LastError string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
