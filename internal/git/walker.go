package git

import (
	"context"
	"fmt"
)

// OpenWalker builds the walker for the requested engine. The returned close
// function releases any temporary clone and is never nil.
func OpenWalker(ctx context.Context, engine Engine, opts ReadOptions) (CommitWalker, func() error, error) {
	noop := func() error { return nil }

	switch engine {
	case EngineGoGit, "":
		r, err := NewHistoryReader(ctx, opts)
		if err != nil {
			return nil, noop, err
		}
		return r, noop, nil
	case EngineCLI:
		r, err := NewCLIReader(ctx, opts)
		if err != nil {
			return nil, noop, err
		}
		return r, r.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown engine %q (expected %q or %q)", engine, EngineGoGit, EngineCLI)
	}
}

// ParseEngine validates an engine name.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "", EngineGoGit:
		return EngineGoGit, nil
	case EngineCLI:
		return EngineCLI, nil
	default:
		return "", fmt.Errorf("unknown engine %q (expected %q or %q)", s, EngineGoGit, EngineCLI)
	}
}
