package output

import (
	"encoding/csv"
	"io"
)

// csvHeader is the header row of the CSV report.
var csvHeader = []string{"Commit Hash", "Commit Date", "Commit Author", "Dependency Name", "Type of Change"}

// CSVReportWriter writes one row per dependency change.
type CSVReportWriter struct{}

// Write outputs the dependency report as CSV.
func (w *CSVReportWriter) Write(report *DependencyReport, options OutputOptions) error {
	return writeReport(options.OutputPath, func(out io.Writer) error {
		writer := csv.NewWriter(out)

		if err := writer.Write(csvHeader); err != nil {
			return err
		}

		for _, e := range report.Events {
			row := []string{
				e.Commit.SHA,
				e.Commit.When.Format(commitDateLayout),
				e.Commit.Author.Name,
				string(e.Key),
				e.Description(),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}
