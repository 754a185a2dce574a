// Package changes diffs two dependency snapshots of one manifest into
// classified change events.
package changes

import (
	"fmt"

	"github.com/masmgr/depminer-go/internal/git"
	"github.com/masmgr/depminer-go/internal/manifest"
)

// ChangeType classifies one dependency change.
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeChanged
)

// AllChangeTypes lists the change types in reporting order.
var AllChangeTypes = []ChangeType{ChangeAdded, ChangeRemoved, ChangeChanged}

// String returns the lowercase change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// ChangeEvent is one dependency change attributed to one commit.
type ChangeEvent struct {
	Commit git.CommitInfo
	Key    manifest.DependencyKey
	Type   ChangeType
	Before manifest.Version
	After  manifest.Version
}

// Description renders the change as "added", "removed" or
// "changed from X to Y".
func (e ChangeEvent) Description() string {
	if e.Type == ChangeChanged {
		return fmt.Sprintf("changed from %s to %s", e.Before, e.After)
	}
	return e.Type.String()
}

// Classify diffs before against after. Keys of after are visited first in
// snapshot order, then the keys only present in before.
func Classify(commit git.CommitInfo, before, after manifest.Snapshot) []ChangeEvent {
	var events []ChangeEvent

	for _, entry := range after.Entries() {
		old, ok := before.Get(entry.Key)
		switch {
		case !ok:
			events = append(events, ChangeEvent{
				Commit: commit,
				Key:    entry.Key,
				Type:   ChangeAdded,
				Before: manifest.NoVersion,
				After:  entry.Version,
			})
		case old != entry.Version:
			events = append(events, ChangeEvent{
				Commit: commit,
				Key:    entry.Key,
				Type:   ChangeChanged,
				Before: old,
				After:  entry.Version,
			})
		}
	}

	for _, entry := range before.Entries() {
		if after.Has(entry.Key) {
			continue
		}
		events = append(events, ChangeEvent{
			Commit: commit,
			Key:    entry.Key,
			Type:   ChangeRemoved,
			Before: entry.Version,
			After:  manifest.NoVersion,
		})
	}

	return events
}
