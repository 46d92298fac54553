// Package report renders a finished audit.
//
// Writers:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: the aggregate report as JSON, optionally wrapped with run metadata
//   - MarkdownWriter: GitHub-flavored Markdown with a mermaid pie chart
//
// All writers implement Writer and can be combined with MultiWriter.
package report
