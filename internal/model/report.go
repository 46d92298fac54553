package model

import "sort"

// Report is the aggregate summary of a completed audit run.
// It is built once, after every outcome is known, by the aggregate package.
//
// Invariants:
//   - SuccessCount + FailedCount equals the number of outcomes folded in.
//   - Every HttpFailure and Timeout outcome contributes exactly one URL to
//     FailedByIdentifier under its identifier.
//   - Success outcomes never contribute to FailedByIdentifier.
type Report struct {
	// SuccessCount is the number of probes that returned a status below 400.
	SuccessCount int `json:"successCount"`

	// FailedCount is the number of probes that returned 400+ or timed out.
	FailedCount int `json:"failedCount"`

	// FailedByIdentifier maps each identifier with at least one failed probe
	// to the failed URLs in arrival order. Duplicated URLs are kept.
	FailedByIdentifier map[string][]string `json:"failedByIdentifier"`
}

// NewReport returns an empty Report ready for folding.
func NewReport() *Report {
	return &Report{
		FailedByIdentifier: make(map[string][]string),
	}
}

// Total returns the number of outcomes the report was built from.
func (r *Report) Total() int {
	return r.SuccessCount + r.FailedCount
}

// HasFailures reports whether any probe failed.
func (r *Report) HasFailures() bool {
	return r.FailedCount > 0
}

// Identifiers returns the identifiers with failures in lexical order.
// Map iteration order is random, so writers use this for stable output.
func (r *Report) Identifiers() []string {
	ids := make([]string, 0, len(r.FailedByIdentifier))
	for id := range r.FailedByIdentifier {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FailedURLs returns the failed URLs recorded for identifier.
func (r *Report) FailedURLs(identifier string) []string {
	return r.FailedByIdentifier[identifier]
}
