package extract

import (
	"log/slog"

	"github.com/nao1215/pixelaudit/internal/model"
)

// Default column names of the ad-delivery impression export.
const (
	// DefaultIdentifierColumn holds the campaign/tactic identifier.
	DefaultIdentifierColumn = "tactic_id"

	// DefaultURLColumn holds the JSON array of impression pixel URLs.
	DefaultURLColumn = "impression_pixel_json"
)

// Extractor turns rows into work items.
// It is safe to reuse across runs; it keeps no per-run state.
type Extractor struct {
	// identifierColumn is the column used as the grouping key.
	identifierColumn string

	// urlColumn is the column holding the URL list.
	urlColumn string

	// logger receives debug messages for skipped and repaired rows.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithIdentifierColumn sets the identifier column name.
// Empty names are ignored.
func WithIdentifierColumn(name string) Option {
	return func(e *Extractor) {
		if name != "" {
			e.identifierColumn = name
		}
	}
}

// WithURLColumn sets the URL-list column name.
// Empty names are ignored.
func WithURLColumn(name string) Option {
	return func(e *Extractor) {
		if name != "" {
			e.urlColumn = name
		}
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor using the default impression export columns
// unless overridden by options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		identifierColumn: DefaultIdentifierColumn,
		urlColumn:        DefaultURLColumn,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// IdentifierColumn returns the configured identifier column.
func (e *Extractor) IdentifierColumn() string {
	return e.identifierColumn
}

// URLColumn returns the configured URL-list column.
func (e *Extractor) URLColumn() string {
	return e.urlColumn
}

// Extract returns the work items for a single row, numbered from 0.
// A row without usable URLs returns nil.
func (e *Extractor) Extract(row model.Row) []model.WorkItem {
	items, _ := e.extractRow(row, 0)
	return items
}

// ExtractAll extracts every row and numbers the resulting work items in row
// order. The number of items is the sum of the per-row URL counts, not the
// number of rows.
func (e *Extractor) ExtractAll(rows []model.Row) ([]model.WorkItem, model.ExtractStats) {
	stats := model.ExtractStats{Rows: len(rows)}
	items := make([]model.WorkItem, 0, len(rows))

	for i, row := range rows {
		rowItems, repaired := e.extractRow(row, len(items))
		if len(rowItems) == 0 {
			stats.RowsSkipped++
			e.logger.Debug("row has no valid pixel URLs",
				"row", i+1,
				"identifier", row[e.identifierColumn],
			)
			continue
		}

		if repaired {
			stats.RowsRepaired++
			e.logger.Debug("repaired malformed pixel list",
				"row", i+1,
				"identifier", row[e.identifierColumn],
			)
		}

		stats.RowsWithURLs++
		items = append(items, rowItems...)
	}

	stats.URLs = len(items)
	return items, stats
}

// extractRow extracts one row, numbering items from firstSeq.
func (e *Extractor) extractRow(row model.Row, firstSeq int) ([]model.WorkItem, bool) {
	urls, repaired := parseField(row[e.urlColumn])
	if len(urls) == 0 {
		return nil, false
	}

	identifier := row[e.identifierColumn]
	items := make([]model.WorkItem, len(urls))
	for i, url := range urls {
		items[i] = model.NewWorkItem(identifier, url, firstSeq+i)
	}
	return items, repaired
}
