package output

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCIReportWriter_Write(t *testing.T) {
	data := writeToTemp(t, &CIReportWriter{}, "ci_output.ndjson")

	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 4 { // 1 summary + 3 changes
		t.Fatalf("expected 4 lines, got %d: %s", len(lines), data)
	}

	var summary CISummary
	if err := json.Unmarshal([]byte(lines[0]), &summary); err != nil {
		t.Fatalf("Failed to parse summary: %v", err)
	}
	if summary.Type != "summary" {
		t.Errorf("summary.Type = %q, want %q", summary.Type, "summary")
	}
	if summary.TouchedCommits != 2 {
		t.Errorf("summary.TouchedCommits = %d, want 2", summary.TouchedCommits)
	}
	if summary.TotalEvents != 3 || summary.Added != 1 || summary.Removed != 1 || summary.Changed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	var entry CIChangeEntry
	if err := json.Unmarshal([]byte(lines[3]), &entry); err != nil {
		t.Fatalf("Failed to parse entry: %v", err)
	}
	if entry.Type != "change" || entry.Dependency != "org.b:util" || entry.Change != "removed" {
		t.Errorf("entry = %+v", entry)
	}
}
