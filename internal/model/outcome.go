package model

import (
	"fmt"
	"time"
)

// OutcomeKind discriminates the variants of ProbeOutcome.
// String and MarshalText provide the names used in reports.
type OutcomeKind int

const (
	// OutcomeSuccess means the server answered with a status code below 400.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeHTTPFailure means the server answered with a status code of 400 or above.
	// The request itself completed normally; it is a failure only for reporting.
	OutcomeHTTPFailure

	// OutcomeTimeout means no response was obtained before the deadline.
	// Connection refused, DNS failures and deadline expiry all land here.
	OutcomeTimeout
)

// FailureStatusThreshold is the lowest HTTP status code classified as a failure.
const FailureStatusThreshold = 400

// String returns the stable name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPFailure:
		return "http_failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*k = OutcomeSuccess
	case "http_failure":
		*k = OutcomeHTTPFailure
	case "timeout":
		*k = OutcomeTimeout
	default:
		return fmt.Errorf("unknown outcome kind %q", string(text))
	}
	return nil
}

// ProbeOutcome is the classified result of probing one WorkItem.
// It is a tagged variant: Kind selects which of the remaining fields are
// meaningful. StatusCode is set for OutcomeSuccess and OutcomeHTTPFailure,
// ErrorDetail only for OutcomeTimeout.
//
// Outcomes are values and are never modified after construction. Use
// NewSuccess, NewHTTPFailure, NewTimeout or Classify to build them.
type ProbeOutcome struct {
	// Kind is the variant tag.
	Kind OutcomeKind `json:"kind"`

	// Identifier is copied from the WorkItem.
	Identifier string `json:"identifier"`

	// URL is copied from the WorkItem.
	URL string `json:"url"`

	// Seq is copied from the WorkItem.
	Seq int `json:"seq"`

	// StatusCode is the HTTP status code returned by the server.
	StatusCode int `json:"status_code,omitempty"`

	// ErrorDetail is the transport error message kept for diagnostics.
	ErrorDetail string `json:"error_detail,omitempty"`

	// Elapsed is how long the probe took.
	Elapsed time.Duration `json:"elapsed"`
}

// NewSuccess creates a Success outcome.
func NewSuccess(item WorkItem, statusCode int, elapsed time.Duration) ProbeOutcome {
	return ProbeOutcome{
		Kind:       OutcomeSuccess,
		Identifier: item.Identifier,
		URL:        item.URL,
		Seq:        item.Seq,
		StatusCode: statusCode,
		Elapsed:    elapsed,
	}
}

// NewHTTPFailure creates an HttpFailure outcome.
func NewHTTPFailure(item WorkItem, statusCode int, elapsed time.Duration) ProbeOutcome {
	return ProbeOutcome{
		Kind:       OutcomeHTTPFailure,
		Identifier: item.Identifier,
		URL:        item.URL,
		Seq:        item.Seq,
		StatusCode: statusCode,
		Elapsed:    elapsed,
	}
}

// NewTimeout creates a Timeout outcome. A nil err is recorded as an empty detail.
func NewTimeout(item WorkItem, err error, elapsed time.Duration) ProbeOutcome {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return ProbeOutcome{
		Kind:        OutcomeTimeout,
		Identifier:  item.Identifier,
		URL:         item.URL,
		Seq:         item.Seq,
		ErrorDetail: detail,
		Elapsed:     elapsed,
	}
}

// Classify turns the raw result of a probe into a ProbeOutcome.
// A transport error always wins over the status code.
func Classify(item WorkItem, statusCode int, err error, elapsed time.Duration) ProbeOutcome {
	if err != nil {
		return NewTimeout(item, err, elapsed)
	}
	if statusCode >= FailureStatusThreshold {
		return NewHTTPFailure(item, statusCode, elapsed)
	}
	return NewSuccess(item, statusCode, elapsed)
}

// Failed reports whether the outcome counts as a failure in the report.
func (o ProbeOutcome) Failed() bool {
	return o.Kind == OutcomeHTTPFailure || o.Kind == OutcomeTimeout
}

// WorkItem returns the work item this outcome was produced for.
func (o ProbeOutcome) WorkItem() WorkItem {
	return NewWorkItem(o.Identifier, o.URL, o.Seq)
}
