package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masmgr/depminer-go/internal/aggregation"
	"github.com/masmgr/depminer-go/internal/changes"
	"github.com/masmgr/depminer-go/internal/git"
	"github.com/masmgr/depminer-go/internal/manifest"
	"github.com/masmgr/depminer-go/internal/miner"
)

func testReport() *DependencyReport {
	tz := time.FixedZone("CET", 3600)
	first := git.CommitInfo{
		SHA:    "1111111111111111111111111111111111111111",
		When:   time.Date(2019, 7, 1, 9, 30, 0, 0, tz),
		Author: git.AuthorInfo{Name: "Doe, Jane", Email: "jane@example.com"},
	}
	second := git.CommitInfo{
		SHA:    "2222222222222222222222222222222222222222",
		When:   time.Date(2019, 8, 2, 18, 0, 5, 0, time.UTC),
		Author: git.AuthorInfo{Name: "bob_builder", Email: "bob@example.com"},
	}

	events := []changes.ChangeEvent{
		{Commit: first, Key: "org.a:lib", Type: changes.ChangeAdded, After: manifest.DeclaredVersion("1.0")},
		{Commit: second, Key: "org.a:lib", Type: changes.ChangeChanged, Before: manifest.DeclaredVersion("1.0"), After: manifest.NoVersion},
		{Commit: second, Key: "org.b:util", Type: changes.ChangeRemoved, Before: manifest.DeclaredVersion("2.1")},
	}
	agg := aggregation.NewDependencyMetricsAggregator()
	agg.Process(events)

	return &DependencyReport{
		RepoURL:     "https://github.com/acme/widgets.git",
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Events:      events,
		Summary: miner.Summary{
			CommitsScanned:   5,
			RevisionsScanned: 2,
			TouchedCommits:   2,
			Events:           3,
			ByType: map[changes.ChangeType]int{
				changes.ChangeAdded:   1,
				changes.ChangeRemoved: 1,
				changes.ChangeChanged: 1,
			},
		},
		Dependencies: agg.Ranked(),
	}
}

func writeToTemp(t *testing.T, w ReportWriter, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := w.Write(testReport(), OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}
