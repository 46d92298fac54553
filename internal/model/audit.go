package model

import (
	"time"

	"github.com/google/uuid"
)

// Row is one already-parsed record of the input export, keyed by column header.
// Values are kept as strings; numeric identifiers are not converted.
type Row map[string]string

// ExtractStats summarizes what the row extractor found.
type ExtractStats struct {
	// Rows is the number of rows examined.
	Rows int `json:"rows"`

	// RowsWithURLs is the number of rows that yielded at least one URL.
	RowsWithURLs int `json:"rows_with_urls"`

	// RowsSkipped is the number of rows whose URL field was empty, "[]" or malformed.
	RowsSkipped int `json:"rows_skipped"`

	// RowsRepaired is the number of rows recovered by the missing-quote repair.
	RowsRepaired int `json:"rows_repaired"`

	// URLs is the total number of work items produced.
	URLs int `json:"urls"`
}

// Breakdown counts outcomes per variant and per HTTP status code.
// It is presentation detail for the report writers and is not part of
// the Report contract.
type Breakdown struct {
	Success     int         `json:"success"`
	HTTPFailure int         `json:"http_failure"`
	Timeout     int         `json:"timeout"`
	StatusCodes map[int]int `json:"status_codes,omitempty"`
}

// Audit carries the state of one audit run through the pipeline.
// Each pipeline step fills in its part; the report writers read the result.
type Audit struct {
	// RunID uniquely identifies this run in logs and JSON output.
	RunID string `json:"run_id"`

	// Source describes where the rows came from (file path, table name).
	Source string `json:"source"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration `json:"elapsed"`

	// Rows are the parsed input records. Not serialized.
	Rows []Row `json:"-"`

	// Items are the work items produced by the extractor. Not serialized.
	Items []WorkItem `json:"-"`

	// Outcomes are the probe outcomes in completion order. Not serialized.
	Outcomes []ProbeOutcome `json:"-"`

	// ExtractStats summarizes row extraction.
	ExtractStats ExtractStats `json:"extract_stats"`

	// Breakdown counts outcomes by variant and status code.
	Breakdown Breakdown `json:"breakdown"`

	// Report is the aggregate result; nil until the aggregate step runs.
	Report *Report `json:"report"`

	// PerformedSteps lists the names of the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Interrupted is set when the run was cancelled before every probe
	// finished. Unfinished probes are reported as timeouts.
	Interrupted bool `json:"interrupted"`
}

// NewAudit creates an Audit for the given rows with a fresh run ID.
func NewAudit(source string, rows []Row) *Audit {
	return &Audit{
		RunID:     uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Rows:      rows,
	}
}
