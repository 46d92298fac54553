package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nao1215/pixelaudit/internal/model"
	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is stripped from the start of UTF-8 input.
const utf8BOM = "\ufeff"

type options struct {
	latin1 bool
	comma  rune
}

// Option configures CSV reading.
type Option func(*options)

// WithLatin1 decodes the file as ISO-8859-1 instead of UTF-8.
// Some export tools write Latin-1 without saying so.
func WithLatin1() Option {
	return func(o *options) {
		o.latin1 = true
	}
}

// WithDelimiter sets the field delimiter. The default is a comma.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		if r != 0 {
			o.comma = r
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{comma: ','}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OpenCSV reads the CSV file at path.
func OpenCSV(path string, opts ...Option) ([]model.Row, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV reads CSV data with a header row from r.
// Data rows shorter than the header get empty strings for the missing
// columns; extra fields beyond the header are dropped.
func ReadCSV(r io.Reader, opts ...Option) ([]model.Row, error) {
	o := newOptions(opts)

	if o.latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = o.comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	header = normalizeHeader(header)

	var rows []model.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if isBlank(record) {
			continue
		}

		row := make(model.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeHeader strips a leading BOM and surrounding spaces from names.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}

// isBlank reports whether every field of record is empty, as happens for a
// trailing line of only delimiters.
func isBlank(record []string) bool {
	return !slices.ContainsFunc(record, func(field string) bool {
		return strings.TrimSpace(field) != ""
	})
}

// RequireColumns checks that rows carry every column in cols.
// An empty row set passes; there is nothing to extract from it.
func RequireColumns(rows []model.Row, cols ...string) error {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, col := range cols {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
