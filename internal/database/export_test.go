package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/pixelaudit/internal/source"
)

// createExport writes a SQLite export with the given statements and returns its path.
func createExport(t *testing.T, statements ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("failed to execute %q: %v", stmt, err)
		}
	}
	return path
}

const impressionsSchema = `CREATE TABLE impressions (
	tactic_id INTEGER,
	impression_pixel_json TEXT,
	cpm REAL
)`

// setupTestExport creates and opens a typical export.
func setupTestExport(t *testing.T) *Export {
	t.Helper()

	path := createExport(t,
		impressionsSchema,
		`INSERT INTO impressions VALUES (333304, '["https://a.example.com/p.gif"]', 1.5)`,
		`INSERT INTO impressions VALUES (325375, '[http://b.example.com/p.gif"]', 2)`,
		`INSERT INTO impressions VALUES (1, NULL, NULL)`,
	)

	exp, err := OpenExport(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })
	return exp
}

// TestOpenExport tests opening export files.
func TestOpenExport(t *testing.T) {
	t.Parallel()

	t.Run("missing file is not created", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.db")
		_, err := OpenExport(path)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("export file must not be created")
		}
	})

	t.Run("opens existing file", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)
		if exp.Path() == "" {
			t.Error("expected path to be recorded")
		}
	})
}

// TestExportTables tests table discovery and resolution.
func TestExportTables(t *testing.T) {
	t.Parallel()

	t.Run("single table is chosen automatically", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)

		tables, err := exp.Tables(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tables) != 1 || tables[0] != "impressions" {
			t.Errorf("got tables %v", tables)
		}

		name, err := exp.ResolveTable(context.Background(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "impressions" {
			t.Errorf("got %q", name)
		}
	})

	t.Run("several tables need a name", func(t *testing.T) {
		t.Parallel()

		path := createExport(t, impressionsSchema, "CREATE TABLE clicks (id INTEGER)")
		exp, err := OpenExport(path)
		if err != nil {
			t.Fatalf("failed to open export: %v", err)
		}
		defer exp.Close()

		if _, err := exp.ResolveTable(context.Background(), ""); !errors.Is(err, ErrAmbiguousTable) {
			t.Errorf("expected ErrAmbiguousTable, got %v", err)
		}
		if name, err := exp.ResolveTable(context.Background(), "clicks"); err != nil || name != "clicks" {
			t.Errorf("got %q, %v", name, err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)
		if _, err := exp.ResolveTable(context.Background(), "nope"); !errors.Is(err, ErrTableNotFound) {
			t.Errorf("expected ErrTableNotFound, got %v", err)
		}
	})

	t.Run("empty export", func(t *testing.T) {
		t.Parallel()

		path := createExport(t, "CREATE TABLE tmp (x INTEGER)", "DROP TABLE tmp")
		exp, err := OpenExport(path)
		if err != nil {
			t.Fatalf("failed to open export: %v", err)
		}
		defer exp.Close()

		if _, err := exp.ResolveTable(context.Background(), ""); !errors.Is(err, ErrNoTables) {
			t.Errorf("expected ErrNoTables, got %v", err)
		}
	})
}

// TestExportReadRows tests row rendering.
func TestExportReadRows(t *testing.T) {
	t.Parallel()

	t.Run("renders values as strings", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)

		rows, err := exp.ReadRows(context.Background(), "impressions")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		if rows[0]["tactic_id"] != "333304" {
			t.Errorf("got tactic_id %q", rows[0]["tactic_id"])
		}
		if rows[0]["cpm"] != "1.5" {
			t.Errorf("got cpm %q", rows[0]["cpm"])
		}
		if rows[1]["impression_pixel_json"] != `[http://b.example.com/p.gif"]` {
			t.Errorf("got pixel field %q", rows[1]["impression_pixel_json"])
		}
		if v, ok := rows[2]["impression_pixel_json"]; !ok || v != "" {
			t.Errorf("NULL should render as empty string, got %q", v)
		}
	})

	t.Run("selected columns only", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)

		rows, err := exp.ReadRows(context.Background(), "", "tactic_id", "impression_pixel_json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := rows[0]["cpm"]; ok {
			t.Error("unselected column should be absent")
		}
		if len(rows[0]) != 2 {
			t.Errorf("expected 2 columns, got %v", rows[0])
		}
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)

		_, err := exp.ReadRows(context.Background(), "impressions", "tactic_id", "pixels")
		if !errors.Is(err, source.ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})

	t.Run("columns lists schema", func(t *testing.T) {
		t.Parallel()

		exp := setupTestExport(t)

		cols, err := exp.Columns(context.Background(), "impressions")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"tactic_id", "impression_pixel_json", "cpm"}
		if len(cols) != len(want) {
			t.Fatalf("got %v", cols)
		}
		for i := range want {
			if cols[i] != want[i] {
				t.Errorf("column %d: got %q, expected %q", i, cols[i], want[i])
			}
		}
	})
}

// TestFormatValue tests rendering of driver values.
func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "x", want: "x"},
		{in: []byte("y"), want: "y"},
		{in: int64(42), want: "42"},
		{in: float64(2), want: "2"},
		{in: 0.25, want: "0.25"},
		{in: true, want: "true"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
