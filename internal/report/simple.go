package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/pixelaudit/internal/model"
)

const ruleWidth = 70

// SimpleWriter renders an audit as plain text for the terminal.
// Failed pixel URLs are listed per identifier, identifiers sorted.
type SimpleWriter struct {
	baseWriter

	// verbose adds the status code breakdown and extraction details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders audit in human-readable form.
func (w *SimpleWriter) Write(audit *model.Audit) (int, error) {
	report, err := reportOf(audit)
	if err != nil {
		return 0, err
	}

	var sb strings.Builder
	w.writeHeader(&sb, audit)
	w.writeSummary(&sb, audit, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, audit *model.Audit) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        PIXEL AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	stats := audit.ExtractStats
	fmt.Fprintf(sb, "Source:      %s\n", audit.Source)
	fmt.Fprintf(sb, "Run ID:      %s\n", audit.RunID)
	fmt.Fprintf(sb, "Started:     %s\n", audit.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Elapsed:     %s\n", audit.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "Rows:        %d (%d without pixels)\n", stats.Rows, stats.RowsSkipped)
	fmt.Fprintf(sb, "Pixel URLs:  %d\n", stats.URLs)
	if w.verbose {
		fmt.Fprintf(sb, "Repaired:    %d rows\n", stats.RowsRepaired)
	}

	if audit.Interrupted {
		sb.WriteString("Status:      INTERRUPTED (unfinished probes counted as timeouts)\n")
	} else {
		sb.WriteString("Status:      Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, audit *model.Audit, report *model.Report) {
	w.writeSection(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Succeeded:  %d\n", report.SuccessCount)
	fmt.Fprintf(sb, "  Failed:     %d\n", report.FailedCount)
	fmt.Fprintf(sb, "  Total:      %d\n", report.Total())
	sb.WriteString("\n")

	if !w.verbose {
		return
	}

	for _, kc := range kindCounts(audit.Breakdown) {
		fmt.Fprintf(sb, "  %-14s %d\n", kindLabel(kc.kind)+":", kc.count)
	}
	sb.WriteString("\n")

	if len(audit.Breakdown.StatusCodes) == 0 {
		return
	}
	codes := make([]int, 0, len(audit.Breakdown.StatusCodes))
	for code := range audit.Breakdown.StatusCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	sb.WriteString("  Status codes:\n")
	for _, code := range codes {
		fmt.Fprintf(sb, "    %d: %d\n", code, audit.Breakdown.StatusCodes[code])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.Report) {
	w.writeSection(sb, "FAILED PIXELS BY IDENTIFIER")

	if !report.HasFailures() {
		sb.WriteString("  No failed pixels\n\n")
		return
	}

	for _, id := range report.Identifiers() {
		urls := report.FailedURLs(id)
		fmt.Fprintf(sb, "[%s] %d failed\n", displayIdentifier(id), len(urls))
		for _, u := range urls {
			fmt.Fprintf(sb, "  - %s\n", u)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pixelaudit\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// displayIdentifier shows rows without an identifier as "(none)".
func displayIdentifier(id string) string {
	if id == "" {
		return "(none)"
	}
	return id
}
