package database

import "errors"

var (
	// ErrTableNotFound is returned when the requested table does not exist.
	ErrTableNotFound = errors.New("table not found in export")

	// ErrAmbiguousTable is returned when no table was named and the export
	// holds more than one.
	ErrAmbiguousTable = errors.New("export has several tables; choose one with --table")

	// ErrNoTables is returned for an export without any table.
	ErrNoTables = errors.New("export has no tables")
)
