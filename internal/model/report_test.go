package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestNewReport tests the Report constructor and helpers.
func TestNewReport(t *testing.T) {
	t.Parallel()

	report := NewReport()

	t.Run("initializes FailedByIdentifier map", func(t *testing.T) {
		t.Parallel()
		if report.FailedByIdentifier == nil {
			t.Error("expected FailedByIdentifier to be initialized")
		}
	})

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()
		if report.Total() != 0 {
			t.Errorf("expected total 0, got %d", report.Total())
		}
		if report.HasFailures() {
			t.Error("expected no failures")
		}
	})
}

// TestReportIdentifiers tests that identifiers are returned sorted.
func TestReportIdentifiers(t *testing.T) {
	t.Parallel()

	report := &Report{
		SuccessCount: 1,
		FailedCount:  3,
		FailedByIdentifier: map[string][]string{
			"333304": {"https://a"},
			"325375": {"https://b", "https://c"},
			"1":      {"https://d"},
		},
	}

	got := report.Identifiers()
	expected := []string{"1", "325375", "333304"}
	if len(got) != len(expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("identifier %d: got %q, expected %q", i, got[i], expected[i])
		}
	}

	if len(report.FailedURLs("325375")) != 2 {
		t.Errorf("expected 2 failed URLs for 325375")
	}
	if report.FailedURLs("missing") != nil {
		t.Error("expected nil for unknown identifier")
	}
	if report.Total() != 4 {
		t.Errorf("expected total 4, got %d", report.Total())
	}
}

// TestReportJSONShape tests the JSON field names consumers depend on.
func TestReportJSONShape(t *testing.T) {
	t.Parallel()

	report := &Report{
		SuccessCount: 541,
		FailedCount:  2,
		FailedByIdentifier: map[string][]string{
			"333304": {"https://x"},
		},
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	for _, key := range []string{`"successCount":541`, `"failedCount":2`, `"failedByIdentifier":{"333304":["https://x"]}`} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %s in %s", key, out)
		}
	}
}

// TestNewAudit tests the Audit constructor.
func TestNewAudit(t *testing.T) {
	t.Parallel()

	rows := []Row{{"tactic_id": "1"}, {"tactic_id": "2"}}
	audit := NewAudit("impressions.csv", rows)

	if audit.RunID == "" {
		t.Error("expected run ID to be set")
	}
	if audit.Source != "impressions.csv" {
		t.Errorf("got source %q", audit.Source)
	}
	if len(audit.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(audit.Rows))
	}
	if time.Since(audit.StartedAt) > time.Second {
		t.Error("StartedAt is too old")
	}
	if audit.Report != nil {
		t.Error("expected nil report before aggregation")
	}

	other := NewAudit("impressions.csv", rows)
	if other.RunID == audit.RunID {
		t.Error("expected distinct run IDs")
	}
}
