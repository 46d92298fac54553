// Package model defines the core data structures used throughout pixelaudit.
//
// This package contains the following main types:
//   - WorkItem: One (identifier, URL) pair destined for a network probe
//   - ProbeOutcome: The classified result of one probe
//   - Report: The aggregate summary of all outcomes of a run
//   - Audit: The state carried through the audit pipeline
//
// The models are designed to be serializable to JSON for report output.
package model
