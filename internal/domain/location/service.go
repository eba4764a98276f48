package location

import "context"

// IngestService accepts raw GPS samples from trackers and the mobile app.
type IngestService interface {
	// Ingest authenticates, validates, persists and evaluates one sample.
	// Evaluation failures after persistence do not fail the call; the
	// sample goes to the retry list instead.
	Ingest(ctx context.Context, apiKey string, req IngestRequest) (IngestResult, error)

	// LastLocation returns the employee's most recent sample
	LastLocation(ctx context.Context, employeeID string) (SampleResponse, error)
}

// Evaluator is the engine as seen from the ingest side: it derives
// entry/exit transitions from one persisted sample.
type Evaluator interface {
	Evaluate(ctx context.Context, sample Sample) error
}
