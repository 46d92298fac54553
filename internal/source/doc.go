// Package source reads impression exports into rows.
//
// Exports are CSV files with a header row. Each data row becomes a
// model.Row keyed by header name; values are kept as strings. The reader
// is lenient in the same ways spreadsheet tools are: bare quotes inside
// fields are accepted, rows may have fewer or more fields than the header,
// and blank lines are ignored.
package source
