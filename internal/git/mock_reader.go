package git

import "context"

// MockWalker is a test double for the history walkers.
// It allows tests to provide predefined commit data without needing a real Git repository.
type MockWalker struct {
	Commits []Commit
	Error   error
}

// NewMockWalker creates a new MockWalker with the given data.
func NewMockWalker(commits []Commit, err error) *MockWalker {
	return &MockWalker{
		Commits: commits,
		Error:   err,
	}
}

// Walk feeds the predefined commits to fn, then returns the configured error.
func (m *MockWalker) Walk(_ context.Context, fn func(Commit) error) error {
	for _, c := range m.Commits {
		if err := fn(c); err != nil {
			return err
		}
	}
	return m.Error
}

// Compile-time interface conformance check.
var _ CommitWalker = (*MockWalker)(nil)
