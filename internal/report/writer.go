package report

import (
	"errors"
	"io"
	"strings"

	"github.com/nao1215/pixelaudit/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNoReport is returned when an audit is written before aggregation ran.
var ErrNoReport = errors.New("audit has no aggregate report")

// Writer renders a finished audit.
type Writer interface {
	// Write renders audit and returns the number of bytes written.
	Write(audit *model.Audit) (int, error)
}

// MultiWriter writes the same audit to several Writers, for example the
// terminal and a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes to each Writer in order and stops at the first error.
func (m *MultiWriter) Write(audit *model.Audit) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(audit)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// reportOf returns the aggregate report of audit or ErrNoReport.
func reportOf(audit *model.Audit) (*model.Report, error) {
	if audit == nil || audit.Report == nil {
		return nil, ErrNoReport
	}
	return audit.Report, nil
}

// kindLabel turns an outcome kind into a display label such as "HTTP Failure".
func kindLabel(kind model.OutcomeKind) string {
	// A Caser keeps state between calls, so each label gets its own.
	caser := cases.Title(language.English)
	words := strings.Fields(strings.ReplaceAll(kind.String(), "_", " "))
	for i, w := range words {
		if w == "http" {
			words[i] = "HTTP"
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

type kindCount struct {
	kind  model.OutcomeKind
	count int
}

// kindCounts lists the outcome variants with their counts in a fixed order.
func kindCounts(b model.Breakdown) []kindCount {
	return []kindCount{
		{model.OutcomeSuccess, b.Success},
		{model.OutcomeHTTPFailure, b.HTTPFailure},
		{model.OutcomeTimeout, b.Timeout},
	}
}
