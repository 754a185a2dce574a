package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/depminer-go/internal/changes"
	"github.com/masmgr/depminer-go/internal/manifest"
)

// DependencyMetrics holds aggregated history for a single dependency.
type DependencyMetrics struct {
	Key              manifest.DependencyKey
	ChangeCount      int
	AddedCount       int
	RemovedCount     int
	VersionChanges   int
	FirstSeenAt      time.Time
	LastChangedAt    time.Time
	CurrentVersion   manifest.Version
	Declared         bool
	Contributors     map[string]struct{}
	ContributorEdits map[string]int
}

// NewDependencyMetrics creates a new DependencyMetrics instance.
func NewDependencyMetrics(key manifest.DependencyKey) *DependencyMetrics {
	return &DependencyMetrics{
		Key:              key,
		Contributors:     make(map[string]struct{}),
		ContributorEdits: make(map[string]int),
	}
}

// ContributorCount returns number of unique contributors.
func (d *DependencyMetrics) ContributorCount() int {
	return len(d.Contributors)
}

// OwnershipRatio returns proportion of changes made by the top contributor.
func (d *DependencyMetrics) OwnershipRatio() float64 {
	if d.ChangeCount == 0 || len(d.ContributorEdits) == 0 {
		return 1.0
	}

	maxEdits := 0
	for _, count := range d.ContributorEdits {
		if count > maxEdits {
			maxEdits = count
		}
	}

	return float64(maxEdits) / float64(d.ChangeCount)
}

// AddEvent adds one change to the dependency's metrics.
func (d *DependencyMetrics) AddEvent(e changes.ChangeEvent) {
	d.ChangeCount++

	switch e.Type {
	case changes.ChangeAdded:
		d.AddedCount++
		d.Declared = true
	case changes.ChangeRemoved:
		d.RemovedCount++
		d.Declared = false
	case changes.ChangeChanged:
		d.VersionChanges++
		d.Declared = true
	}
	d.CurrentVersion = e.After

	when := e.Commit.When
	if d.FirstSeenAt.IsZero() || when.Before(d.FirstSeenAt) {
		d.FirstSeenAt = when
	}
	if d.LastChangedAt.IsZero() || when.After(d.LastChangedAt) {
		d.LastChangedAt = when
	}

	contributorKey := e.Commit.Author.ContributorKey()
	d.Contributors[contributorKey] = struct{}{}
	d.ContributorEdits[contributorKey]++
}

// DependencyMetricsAggregator folds change events into per-dependency metrics.
type DependencyMetricsAggregator struct {
	metrics map[manifest.DependencyKey]*DependencyMetrics
}

// NewDependencyMetricsAggregator creates a new aggregator.
func NewDependencyMetricsAggregator() *DependencyMetricsAggregator {
	return &DependencyMetricsAggregator{
		metrics: make(map[manifest.DependencyKey]*DependencyMetrics),
	}
}

// Process aggregates events, which must be in traversal order.
func (a *DependencyMetricsAggregator) Process(events []changes.ChangeEvent) map[manifest.DependencyKey]*DependencyMetrics {
	for _, e := range events {
		m, ok := a.metrics[e.Key]
		if !ok {
			m = NewDependencyMetrics(e.Key)
			a.metrics[e.Key] = m
		}
		m.AddEvent(e)
	}
	return a.metrics
}

// Ranked returns the metrics ordered by change count, most churned first.
// Ties are broken by key.
func (a *DependencyMetricsAggregator) Ranked() []*DependencyMetrics {
	ranked := make([]*DependencyMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		ranked = append(ranked, m)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ChangeCount != ranked[j].ChangeCount {
			return ranked[i].ChangeCount > ranked[j].ChangeCount
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}
