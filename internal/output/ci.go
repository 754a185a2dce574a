package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/depminer-go/internal/changes"
)

// CIReportWriter writes dependency reports as NDJSON (one JSON object per line) for CI pipelines.
type CIReportWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type           string `json:"type"`
	Repo           string `json:"repo"`
	TouchedCommits int    `json:"touchedCommits"`
	TotalEvents    int    `json:"totalEvents"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	Changed        int    `json:"changed"`
}

// CIChangeEntry represents a single change in CI output.
type CIChangeEntry struct {
	Type        string `json:"type"`
	Commit      string `json:"commit"`
	Dependency  string `json:"dependency"`
	Change      string `json:"change"`
	Description string `json:"description"`
}

// Write outputs the dependency report as NDJSON.
func (w *CIReportWriter) Write(report *DependencyReport, options OutputOptions) error {
	return writeReport(options.OutputPath, func(out io.Writer) error {
		summary := CISummary{
			Type:           "summary",
			Repo:           report.RepoURL,
			TouchedCommits: report.Summary.TouchedCommits,
			TotalEvents:    len(report.Events),
			Added:          report.Summary.ByType[changes.ChangeAdded],
			Removed:        report.Summary.ByType[changes.ChangeRemoved],
			Changed:        report.Summary.ByType[changes.ChangeChanged],
		}
		if err := writeNDJSONLine(out, summary); err != nil {
			return err
		}

		for _, e := range report.Events {
			entry := CIChangeEntry{
				Type:        "change",
				Commit:      e.Commit.SHA,
				Dependency:  string(e.Key),
				Change:      e.Type.String(),
				Description: e.Description(),
			}
			if err := writeNDJSONLine(out, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
