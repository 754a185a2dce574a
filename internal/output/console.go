package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/depminer-go/internal/changes"
)

// topDependencies is the number of dependencies listed in the console summary.
const topDependencies = 5

// ConsoleSummaryWriter prints the human readable run summary.
type ConsoleSummaryWriter struct {
	Out io.Writer
}

// Write prints the repository, the number of touched commits and the report
// location, followed by per-type change counts.
func (w *ConsoleSummaryWriter) Write(report *DependencyReport, savedTo string) error {
	out := w.Out

	heading := color.New(color.FgGreen, color.Bold)
	heading.Fprintf(out, "Repository: %s\n", report.RepoURL)
	fmt.Fprintf(out, "Number of commits with dependency changes: %d\n", report.Summary.TouchedCommits)
	if savedTo != "" {
		fmt.Fprintf(out, "Commit list saved to: %s\n", savedTo)
	}

	for _, t := range changes.AllChangeTypes {
		paint := getChangeTypeColor(t)
		fmt.Fprintf(out, "  %-8s %s\n", t.String()+":", paint("%d", report.Summary.ByType[t]))
	}

	top := limitTop(report.Dependencies, topDependencies)
	if len(top) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	color.New(color.Bold).Fprintln(out, "Most changed dependencies")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDependency\tChanges\tVersions\tContributors\tOwnership\tCurrent")
	for i, d := range top {
		current := color.RedString("removed")
		if d.Declared {
			current = d.CurrentVersion.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%.0f%%\t%s\n",
			i+1,
			d.Key,
			d.ChangeCount,
			d.VersionChanges,
			d.ContributorCount(),
			d.OwnershipRatio()*100,
			current,
		)
	}
	return tw.Flush()
}

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func getChangeTypeColor(t changes.ChangeType) func(string, ...interface{}) string {
	switch t {
	case changes.ChangeAdded:
		return color.GreenString
	case changes.ChangeRemoved:
		return color.RedString
	default:
		return color.YellowString
	}
}
