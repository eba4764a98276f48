package location

import "errors"

// Location domain errors
var (
	ErrUnauthenticated = errors.New("missing or invalid location API key")
	ErrSampleNotFound  = errors.New("location sample not found")
)
