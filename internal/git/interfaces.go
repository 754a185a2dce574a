package git

import "context"

// CommitWalker yields a repository's commits oldest first.
// Each commit is fully resolved before fn is called and fn returning an error
// stops the walk with that error.
type CommitWalker interface {
	Walk(ctx context.Context, fn func(Commit) error) error
}

// Compile-time interface conformance checks.
var (
	_ CommitWalker = (*HistoryReader)(nil)
	_ CommitWalker = (*CLIReader)(nil)
)
