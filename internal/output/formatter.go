package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/depminer-go/internal/aggregation"
	"github.com/masmgr/depminer-go/internal/changes"
	"github.com/masmgr/depminer-go/internal/miner"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*CSVReportWriter)(nil)
	_ ReportWriter = (*JSONReportWriter)(nil)
	_ ReportWriter = (*CIReportWriter)(nil)
	_ ReportWriter = (*MarkdownReportWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatCSV      OutputFormat = "csv"
	FormatJSON     OutputFormat = "json"
	FormatCI       OutputFormat = "ci"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat validates a format name. The empty name selects CSV.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatCI, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected csv, json, ci or markdown)", s)
	}
}

// Extension returns the file extension used for the format, including the dot.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCI:
		return ".ndjson"
	case FormatMarkdown:
		return ".md"
	default:
		return ".csv"
	}
}

// DefaultFileName derives the report file name for a repository.
func DefaultFileName(owner, repo string, format OutputFormat) string {
	return fmt.Sprintf("%s_%s_dependency_commits%s", owner, repo, format.Extension())
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format OutputFormat
	// OutputPath is the destination file. Empty writes to stdout.
	OutputPath string
}

// DependencyReport holds the results of one mining run.
type DependencyReport struct {
	RepoURL     string
	GeneratedAt time.Time
	Events      []changes.ChangeEvent
	Summary     miner.Summary

	// Dependencies ranks every dependency seen in Events, most changed first.
	Dependencies []*aggregation.DependencyMetrics
}

// NewDependencyReport builds a report from a mining result.
func NewDependencyReport(repoURL string, result *miner.Result, generatedAt time.Time) *DependencyReport {
	events := result.Events()
	agg := aggregation.NewDependencyMetricsAggregator()
	agg.Process(events)

	return &DependencyReport{
		RepoURL:      repoURL,
		GeneratedAt:  generatedAt,
		Events:       events,
		Summary:      result.Summary(),
		Dependencies: agg.Ranked(),
	}
}

// ReportWriter writes dependency reports.
type ReportWriter interface {
	Write(report *DependencyReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONReportWriter{}
	case FormatCI:
		return &CIReportWriter{}
	case FormatMarkdown:
		return &MarkdownReportWriter{}
	default:
		return &CSVReportWriter{}
	}
}
