// Package database reads impression exports delivered as SQLite files.
//
// Some ad platforms hand out their delivery exports as a SQLite database
// instead of a CSV file. Export opens such a file read-only and renders the
// rows of one table as model.Row values, exactly as if they had been read
// from CSV: every value becomes a string and NULL becomes "".
//
// We use SQLite via modernc.org/sqlite, which is CGO-free. The file is
// never written to.
package database
