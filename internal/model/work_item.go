package model

// WorkItem is one pixel URL found in an input row, paired with the row's
// identifier (for example the tactic_id column of an ad-delivery export).
// A single row may yield zero, one or many work items.
type WorkItem struct {
	// Identifier is the caller-supplied grouping key used to bucket failures.
	// It is treated as an opaque string even when the source column is numeric.
	Identifier string `json:"identifier"`

	// URL is the pixel URL to probe.
	URL string `json:"url"`

	// Seq is the position of this item in the overall work item sequence.
	// It is assigned by the extractor and used when a stable report order is
	// requested.
	Seq int `json:"seq"`
}

// NewWorkItem creates a WorkItem.
func NewWorkItem(identifier, url string, seq int) WorkItem {
	return WorkItem{
		Identifier: identifier,
		URL:        url,
		Seq:        seq,
	}
}
