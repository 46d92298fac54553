package pipeline

import "errors"

var (
	// ErrInvalidConcurrency is returned when MaxConcurrency is not positive.
	ErrInvalidConcurrency = errors.New("max concurrency must be greater than 0")

	// ErrInvalidTimeout is returned when PerRequestTimeout is not positive.
	ErrInvalidTimeout = errors.New("per-request timeout must be greater than 0")

	// ErrNilProber is returned when a dispatcher is built without a prober.
	ErrNilProber = errors.New("prober must not be nil")
)
