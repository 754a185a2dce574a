package git

import (
	"strings"
	"time"
)

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA     string
	When    time.Time // author date
	Author  AuthorInfo
	Message string
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ContributorKey returns a normalized identifier for grouping contributors.
func (a AuthorInfo) ContributorKey() string {
	return strings.ToLower(a.Email)
}

// ModifiedFile represents a file touched by a commit together with its full
// text on both sides of the change.
type ModifiedFile struct {
	Path    string
	OldPath string // For renames
	Kind    ChangeKind
	Before  string
	After   string
}

// HasBefore reports whether the file existed before the commit.
func (f ModifiedFile) HasBefore() bool {
	return f.Kind != ChangeKindAdded
}

// HasAfter reports whether the file still exists after the commit.
func (f ModifiedFile) HasAfter() bool {
	return f.Kind != ChangeKindDeleted
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Commit bundles a commit with the files it modified.
type Commit struct {
	Info  CommitInfo
	Files []ModifiedFile
}

// Engine selects the implementation used to walk history.
type Engine string

const (
	EngineGoGit Engine = "go-git"
	EngineCLI   Engine = "cli"
)

// RenameDetectMode controls how file renames are detected.
type RenameDetectMode int

const (
	RenameDetectOff RenameDetectMode = iota
	RenameDetectSimple
	RenameDetectAggressive
)

// ReadOptions configures the history walkers.
type ReadOptions struct {
	// RepoURL is a clone URL or a local repository path.
	RepoURL string
	Branch  string
	// Include restricts traversal to commits touching at least one matching path.
	Include []string
	// ContentPaths limits blob loading to matching paths. Empty loads every file.
	ContentPaths []string
	RenameDetect RenameDetectMode
	OnProgress   func(processed int)
}
