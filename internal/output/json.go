package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/depminer-go/internal/changes"
)

// JSONReportWriter writes dependency reports as JSON.
type JSONReportWriter struct{}

// JSONDependencyReport is the JSON output structure for a mining run.
type JSONDependencyReport struct {
	RepoURL        string           `json:"repo"`
	GeneratedAt    string           `json:"generatedAt"`
	CommitsScanned int              `json:"commitsScanned"`
	TouchedCommits int              `json:"touchedCommits"`
	TotalEvents    int              `json:"totalEvents"`
	Counts         map[string]int   `json:"counts"`
	Events         []JSONChangeItem `json:"events"`
	Dependencies   []JSONDependency `json:"dependencies"`
}

// JSONDependency is the JSON output structure for one dependency's history.
type JSONDependency struct {
	Dependency     string  `json:"dependency"`
	Changes        int     `json:"changes"`
	Added          int     `json:"added"`
	Removed        int     `json:"removed"`
	VersionChanges int     `json:"versionChanges"`
	Declared       bool    `json:"declared"`
	CurrentVersion *string `json:"currentVersion"`
	FirstSeen      string  `json:"firstSeen"`
	LastChanged    string  `json:"lastChanged"`
	Contributors   int     `json:"contributors"`
	OwnershipRatio float64 `json:"ownershipRatio"`
}

// JSONChangeItem is the JSON output structure for a single change.
type JSONChangeItem struct {
	Commit      string  `json:"commit"`
	Date        string  `json:"date"`
	Author      string  `json:"author"`
	AuthorEmail string  `json:"authorEmail,omitempty"`
	Dependency  string  `json:"dependency"`
	Type        string  `json:"type"`
	Before      *string `json:"before"`
	After       *string `json:"after"`
	Description string  `json:"description"`
}

// Write outputs the dependency report as JSON.
func (w *JSONReportWriter) Write(report *DependencyReport, options OutputOptions) error {
	items := make([]JSONChangeItem, len(report.Events))
	for i, e := range report.Events {
		items[i] = JSONChangeItem{
			Commit:      e.Commit.SHA,
			Date:        e.Commit.When.Format(time.RFC3339),
			Author:      e.Commit.Author.Name,
			AuthorEmail: e.Commit.Author.Email,
			Dependency:  string(e.Key),
			Type:        e.Type.String(),
			Before:      versionPtr(e.Before.Declared, e.Before.Value),
			After:       versionPtr(e.After.Declared, e.After.Value),
			Description: e.Description(),
		}
	}

	deps := make([]JSONDependency, len(report.Dependencies))
	for i, d := range report.Dependencies {
		deps[i] = JSONDependency{
			Dependency:     string(d.Key),
			Changes:        d.ChangeCount,
			Added:          d.AddedCount,
			Removed:        d.RemovedCount,
			VersionChanges: d.VersionChanges,
			Declared:       d.Declared,
			CurrentVersion: versionPtr(d.Declared && d.CurrentVersion.Declared, d.CurrentVersion.Value),
			FirstSeen:      d.FirstSeenAt.Format(time.RFC3339),
			LastChanged:    d.LastChangedAt.Format(time.RFC3339),
			Contributors:   d.ContributorCount(),
			OwnershipRatio: d.OwnershipRatio(),
		}
	}

	counts := make(map[string]int, len(changes.AllChangeTypes))
	for _, t := range changes.AllChangeTypes {
		counts[t.String()] = report.Summary.ByType[t]
	}

	jsonReport := JSONDependencyReport{
		RepoURL:        report.RepoURL,
		GeneratedAt:    report.GeneratedAt.Format(reportDateTimeLayout),
		CommitsScanned: report.Summary.CommitsScanned,
		TouchedCommits: report.Summary.TouchedCommits,
		TotalEvents:    len(report.Events),
		Counts:         counts,
		Events:         items,
		Dependencies:   deps,
	}

	return writeReport(options.OutputPath, func(out io.Writer) error {
		return writeJSON(out, jsonReport)
	})
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
