package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/pixelaudit/internal/model"
)

// maxURLWidth keeps long pixel URLs from blowing up table layout.
const maxURLWidth = 120

// MarkdownWriter renders an audit as GitHub-flavored Markdown, suitable for
// pasting into an issue or a campaign QA ticket.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders audit in Markdown.
func (w *MarkdownWriter) Write(audit *model.Audit) (int, error) {
	report, err := reportOf(audit)
	if err != nil {
		return 0, err
	}

	md := markdown.NewMarkdown(w.output)
	w.writeHeader(md, audit)
	w.writeSummary(md, audit, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, audit *model.Audit) {
	md.H1("Pixel Audit Report")
	md.PlainText("")

	status := "✅ Complete"
	if audit.Interrupted {
		status = "⚠️ Interrupted (unfinished probes counted as timeouts)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + audit.Source + "`"},
			{"Run ID", "`" + audit.RunID + "`"},
			{"Started", audit.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Rows", strconv.Itoa(audit.ExtractStats.Rows)},
			{"Rows Without Pixels", strconv.Itoa(audit.ExtractStats.RowsSkipped)},
			{"Pixel URLs", strconv.Itoa(audit.ExtractStats.URLs)},
			{"Status", status},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, audit *model.Audit, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"Succeeded", strconv.Itoa(report.SuccessCount)},
		{"Failed", strconv.Itoa(report.FailedCount)},
	}
	for _, kc := range kindCounts(audit.Breakdown) {
		if kc.kind == model.OutcomeSuccess {
			continue
		}
		rows = append(rows, []string{"↳ " + kindLabel(kc.kind), strconv.Itoa(kc.count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(report.Total()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Total() > 0 {
		w.writePieChart(md, audit.Breakdown)
	}
	w.writeAlert(md, report)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, b model.Breakdown) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pixel Outcomes"),
		piechart.WithShowData(true),
	)
	for _, kc := range kindCounts(b) {
		if kc.count > 0 {
			chart.LabelAndIntValue(kindLabel(kc.kind), uint64(kc.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.Total() == 0:
		md.Note("No pixel URLs were found in the input.")
	case report.SuccessCount == 0:
		md.Cautionf("Every pixel failed. %d URL(s) did not respond successfully.", report.FailedCount)
	case report.HasFailures():
		md.Warningf(
			"%d pixel(s) failed across %d identifier(s).",
			report.FailedCount, len(report.FailedByIdentifier),
		)
	default:
		md.Tip("All pixels responded successfully.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.Report) {
	md.H2("Failed Pixels")
	md.PlainText("")

	if !report.HasFailures() {
		md.PlainText("No failed pixels.")
		md.PlainText("")
		return
	}

	for _, id := range report.Identifiers() {
		urls := report.FailedURLs(id)
		md.PlainText("### " + displayIdentifier(id) + " (" + strconv.Itoa(len(urls)) + ")")
		md.PlainText("")

		rows := make([][]string, len(urls))
		for i, u := range urls {
			rows[i] = []string{strconv.Itoa(i + 1), "`" + truncateString(u, maxURLWidth) + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "URL"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by pixelaudit*")
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
