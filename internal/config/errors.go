package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and let callers use
// errors.Is() while still giving a readable message.
var (
	// ErrNoInput is returned when no export file is specified.
	ErrNoInput = errors.New("no input specified: provide a CSV or SQLite export file")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency ceiling is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrEmptyColumn is returned when a column name is blank.
	ErrEmptyColumn = errors.New("invalid column: identifier and URL column names must not be empty")

	// ErrInvalidMaxRedirects is returned for a negative redirect limit.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be non-negative")

	// ErrInvalidMethod is returned for a probe method other than GET or HEAD.
	ErrInvalidMethod = errors.New("invalid method: must be GET or HEAD")

	// ErrInvalidEnv is returned when a PIXELAUDIT_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
