package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/depminer-go/internal/changes"
)

// MarkdownReportWriter writes dependency reports as Markdown.
type MarkdownReportWriter struct{}

// Write outputs the dependency report as Markdown.
func (w *MarkdownReportWriter) Write(report *DependencyReport, options OutputOptions) error {
	return writeReport(options.OutputPath, func(out io.Writer) error {
		fmt.Fprintln(out, "# Dependency Changes")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoURL)
		fmt.Fprintf(out, "**Commits with dependency changes:** %d\n\n", report.Summary.TouchedCommits)

		parts := make([]string, 0, len(changes.AllChangeTypes))
		for _, t := range changes.AllChangeTypes {
			parts = append(parts, fmt.Sprintf("%s %d", getChangeTypeEmoji(t), report.Summary.ByType[t]))
		}
		fmt.Fprintf(out, "**Changes:** %s\n\n", strings.Join(parts, " / "))

		if len(report.Events) == 0 {
			fmt.Fprintln(out, "No dependency changes found.")
			return nil
		}

		fmt.Fprintln(out, "| Commit | Date | Author | Dependency | Change |")
		fmt.Fprintln(out, "|--------|------|--------|------------|--------|")
		for _, e := range report.Events {
			_, err := fmt.Fprintf(out, "| `%s` | %s | %s | `%s` | %s |\n",
				shortSHA(e.Commit.SHA),
				e.Commit.When.Format(commitDateLayout),
				escapeMarkdown(e.Commit.Author.Name),
				e.Key,
				escapeMarkdown(e.Description()),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func getChangeTypeEmoji(t changes.ChangeType) string {
	switch t {
	case changes.ChangeAdded:
		return "🟢"
	case changes.ChangeRemoved:
		return "🔴"
	default:
		return "🟡"
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
