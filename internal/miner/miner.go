// Package miner folds a commit walk into the list of dependency changes made
// to one manifest file.
package miner

import (
	"context"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/rs/zerolog/log"

	"github.com/masmgr/depminer-go/internal/changes"
	"github.com/masmgr/depminer-go/internal/git"
	"github.com/masmgr/depminer-go/internal/manifest"
)

// DefaultManifestPath is the repository-relative manifest mined by default.
const DefaultManifestPath = "pom.xml"

// Miner drives a walker over history and classifies every change to the
// manifest at ManifestPath. Only files whose path equals ManifestPath exactly
// are considered; a manifest with the same name in a subdirectory is ignored.
type Miner struct {
	walker       git.CommitWalker
	parser       manifest.Parser
	manifestPath string
}

// New creates a Miner. An empty manifestPath selects DefaultManifestPath and a
// nil parser selects the tolerant parser.
func New(walker git.CommitWalker, parser manifest.Parser, manifestPath string) *Miner {
	if parser == nil {
		parser = manifest.TolerantParser{}
	}
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}
	return &Miner{
		walker:       walker,
		parser:       parser,
		manifestPath: manifestPath,
	}
}

// ManifestPath returns the path the miner matches against.
func (m *Miner) ManifestPath() string {
	return m.manifestPath
}

// Mine walks the whole history and returns the accumulated result. A walker
// failure aborts the run and no partial result is returned.
func (m *Miner) Mine(ctx context.Context) (*Result, error) {
	result := newResult()

	err := m.walker.Walk(ctx, func(c git.Commit) error {
		result.commitsScanned++
		for _, file := range c.Files {
			if file.Path != m.manifestPath {
				continue
			}
			result.revisionsScanned++

			events := changes.Classify(c.Info, m.snapshot(file.HasBefore(), file.Before), m.snapshot(file.HasAfter(), file.After))
			log.Debug().
				Str("commit", c.Info.SHA).
				Str("kind", file.Kind.String()).
				Int("events", len(events)).
				Msg("manifest revision")
			result.add(events)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	log.Info().
		Int("commits", result.commitsScanned).
		Int("touched", result.TouchedCount()).
		Int("events", len(result.events)).
		Msg("mining finished")
	return result, nil
}

func (m *Miner) snapshot(exists bool, text string) manifest.Snapshot {
	if !exists {
		return manifest.Snapshot{}
	}
	return m.parser.Parse(text)
}

// Result holds the events of one mining run in traversal order together with
// the distinct commits that produced them.
type Result struct {
	events           []changes.ChangeEvent
	touched          *orderedmap.OrderedMap[string, git.CommitInfo]
	commitsScanned   int
	revisionsScanned int
}

func newResult() *Result {
	return &Result{touched: orderedmap.NewOrderedMap[string, git.CommitInfo]()}
}

func (r *Result) add(events []changes.ChangeEvent) {
	for _, e := range events {
		r.events = append(r.events, e)
		if !r.touched.Has(e.Commit.SHA) {
			r.touched.Set(e.Commit.SHA, e.Commit)
		}
	}
}

// Events returns every change event in traversal order.
func (r *Result) Events() []changes.ChangeEvent {
	return r.events
}

// TouchedCommits returns the commits that produced at least one event, in the
// order they were first touched.
func (r *Result) TouchedCommits() []git.CommitInfo {
	commits := make([]git.CommitInfo, 0, r.touched.Len())
	for _, info := range r.touched.AllFromFront() {
		commits = append(commits, info)
	}
	return commits
}

// TouchedCount returns the number of distinct touched commits.
func (r *Result) TouchedCount() int {
	return r.touched.Len()
}

// Summary aggregates the run.
type Summary struct {
	CommitsScanned   int
	RevisionsScanned int
	TouchedCommits   int
	Events           int
	ByType           map[changes.ChangeType]int
}

// Summary counts events per change type.
func (r *Result) Summary() Summary {
	s := Summary{
		CommitsScanned:   r.commitsScanned,
		RevisionsScanned: r.revisionsScanned,
		TouchedCommits:   r.TouchedCount(),
		Events:           len(r.events),
		ByType:           make(map[changes.ChangeType]int, len(changes.AllChangeTypes)),
	}
	for _, t := range changes.AllChangeTypes {
		s.ByType[t] = 0
	}
	for _, e := range r.events {
		s.ByType[e.Type]++
	}
	return s
}
