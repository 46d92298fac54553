package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/pixelaudit/internal/model"
)

// JSONWriter outputs the aggregate report as JSON.
//
// By default the bare Report is written, which is the shape downstream
// consumers parse: {"successCount":..,"failedCount":..,"failedByIdentifier":{..}}.
// WithEnvelope wraps it with run metadata instead.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// envelope wraps the report in a JSONReport.
	envelope bool

	// version is written into the envelope.
	version string

	// now returns the envelope's generation time.
	now func() time.Time
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithEnvelope wraps the report in a JSONReport carrying version and run
// metadata.
func WithEnvelope(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.envelope = true
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report, or the enveloped report, followed by a newline.
func (w *JSONWriter) Write(audit *model.Audit) (int, error) {
	report, err := reportOf(audit)
	if err != nil {
		return 0, err
	}

	if w.envelope {
		return w.writeJSON(NewJSONReport(audit, w.version, w.now()))
	}
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport is the enveloped JSON form of an audit.
type JSONReport struct {
	// Version is the pixelaudit version that produced the report.
	Version string `json:"version"`

	// RunID identifies the audit run.
	RunID string `json:"runId"`

	// GeneratedAt is when the report was written.
	GeneratedAt time.Time `json:"generatedAt"`

	// Summary holds run statistics that are not part of the report itself.
	Summary Summary `json:"summary"`

	// Report is the aggregate report.
	Report *model.Report `json:"report"`
}

// Summary holds the run statistics of an enveloped report.
type Summary struct {
	Source      string             `json:"source"`
	Interrupted bool               `json:"interrupted"`
	ElapsedMS   int64              `json:"elapsedMs"`
	Extract     model.ExtractStats `json:"extract"`
	Outcomes    model.Breakdown    `json:"outcomes"`
}

// NewJSONReport builds the envelope for audit.
func NewJSONReport(audit *model.Audit, version string, generatedAt time.Time) *JSONReport {
	return &JSONReport{
		Version:     version,
		RunID:       audit.RunID,
		GeneratedAt: generatedAt.UTC(),
		Summary: Summary{
			Source:      audit.Source,
			Interrupted: audit.Interrupted,
			ElapsedMS:   audit.Elapsed.Milliseconds(),
			Extract:     audit.ExtractStats,
			Outcomes:    audit.Breakdown,
		},
		Report: audit.Report,
	}
}
