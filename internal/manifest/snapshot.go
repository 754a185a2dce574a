// Package manifest extracts declared dependencies from Maven build manifests.
package manifest

import (
	"github.com/elliotchance/orderedmap/v3"
)

// DependencyKey identifies one dependency declaration as "<group>:<artifact>".
type DependencyKey string

// NewDependencyKey joins a group and artifact identifier.
func NewDependencyKey(group, artifact string) DependencyKey {
	return DependencyKey(group + ":" + artifact)
}

// Version is a declared version string or the absent value.
type Version struct {
	Value    string
	Declared bool
}

// NoVersion is the version of a declaration without a <version> element.
var NoVersion = Version{}

// DeclaredVersion returns a present version.
func DeclaredVersion(v string) Version {
	return Version{Value: v, Declared: true}
}

// String renders the version, using "None" for the absent value.
func (v Version) String() string {
	if !v.Declared {
		return "None"
	}
	return v.Value
}

// Entry is one key/version pair of a snapshot.
type Entry struct {
	Key     DependencyKey
	Version Version
}

// Snapshot is the ordered set of dependencies declared by one manifest text.
// Keys keep the position of their first declaration; a repeated key takes the
// version of its last declaration. The zero value is an empty snapshot.
type Snapshot struct {
	deps *orderedmap.OrderedMap[DependencyKey, Version]
}

// NewSnapshot builds a snapshot from entries in document order.
func NewSnapshot(entries ...Entry) Snapshot {
	b := newSnapshotBuilder()
	for _, e := range entries {
		b.set(e.Key, e.Version)
	}
	return b.build()
}

// Len returns the number of distinct keys.
func (s Snapshot) Len() int {
	if s.deps == nil {
		return 0
	}
	return s.deps.Len()
}

// Get returns the version declared for key.
func (s Snapshot) Get(key DependencyKey) (Version, bool) {
	if s.deps == nil {
		return NoVersion, false
	}
	return s.deps.Get(key)
}

// Has reports whether key is declared.
func (s Snapshot) Has(key DependencyKey) bool {
	_, ok := s.Get(key)
	return ok
}

// Entries returns the declarations in snapshot order.
func (s Snapshot) Entries() []Entry {
	if s.deps == nil {
		return nil
	}
	entries := make([]Entry, 0, s.deps.Len())
	for key, version := range s.deps.AllFromFront() {
		entries = append(entries, Entry{Key: key, Version: version})
	}
	return entries
}

// Map returns an unordered copy of the snapshot.
func (s Snapshot) Map() map[DependencyKey]Version {
	m := make(map[DependencyKey]Version, s.Len())
	for _, e := range s.Entries() {
		m[e.Key] = e.Version
	}
	return m
}

type snapshotBuilder struct {
	deps *orderedmap.OrderedMap[DependencyKey, Version]
}

func newSnapshotBuilder() *snapshotBuilder {
	return &snapshotBuilder{deps: orderedmap.NewOrderedMap[DependencyKey, Version]()}
}

func (b *snapshotBuilder) set(key DependencyKey, version Version) {
	b.deps.Set(key, version)
}

func (b *snapshotBuilder) build() Snapshot {
	if b.deps.Len() == 0 {
		return Snapshot{}
	}
	return Snapshot{deps: b.deps}
}
