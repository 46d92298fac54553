package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pixelaudit/internal/model"
	"github.com/nao1215/pixelaudit/internal/source"
)

// Export is a read-only SQLite impression export.
type Export struct {
	db   *sql.DB
	path string
}

// OpenExport opens the SQLite file at path read-only.
// The file must exist; it is never created.
func OpenExport(path string) (*Export, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open export %s: %w", path, err)
	}

	// The file: prefix makes the driver honour mode=ro.
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Export{db: db, path: path}, nil
}

// Close closes the database connection.
func (e *Export) Close() error {
	return e.db.Close()
}

// Path returns the file the export was opened from.
func (e *Export) Path() string {
	return e.path
}

// Tables lists the user tables and views in name order.
func (e *Export) Tables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, `
	SELECT name FROM sqlite_master
	WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
	ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ResolveTable returns name if it exists. An empty name selects the only
// table of the export.
func (e *Export) ResolveTable(ctx context.Context, name string) (string, error) {
	tables, err := e.Tables(ctx)
	if err != nil {
		return "", err
	}

	if name == "" {
		switch len(tables) {
		case 0:
			return "", ErrNoTables
		case 1:
			return tables[0], nil
		default:
			return "", fmt.Errorf("%w: %s", ErrAmbiguousTable, strings.Join(tables, ", "))
		}
	}

	for _, t := range tables {
		if t == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTableNotFound, name)
}

// Columns returns the column names of table in declaration order.
func (e *Export) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// ReadRows returns the rows of table. With no columns, every column is
// read; otherwise only the named ones, which must all exist.
func (e *Export) ReadRows(ctx context.Context, table string, columns ...string) ([]model.Row, error) {
	table, err := e.ResolveTable(ctx, table)
	if err != nil {
		return nil, err
	}

	if len(columns) > 0 {
		if err := e.requireColumns(ctx, table, columns); err != nil {
			return nil, err
		}
	}

	selectList := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = quoteIdent(c)
		}
		selectList = strings.Join(quoted, ", ")
	}

	//nolint:gosec // identifiers are quoted and checked against the schema
	rows, err := e.db.QueryContext(ctx, "SELECT "+selectList+" FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var result []model.Row
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(model.Row, len(names))
		for i, name := range names {
			row[name] = formatValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return result, nil
}

func (e *Export) requireColumns(ctx context.Context, table string, want []string) error {
	have, err := e.Columns(ctx, table)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}

	var missing []string
	for _, c := range want {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", source.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// formatValue renders a scanned SQLite value the way it would appear in a
// CSV export.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
