package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/rs/zerolog/log"
)

// errEmptyRepository marks a HEAD walk on a repository without commits.
var errEmptyRepository = errors.New("repository has no commits")

// HistoryReader walks commit history through go-git.
type HistoryReader struct {
	repo *git.Repository
	opts ReadOptions
}

// NewHistoryReader opens RepoURL when it is a local directory and otherwise
// clones it into in-memory storage.
func NewHistoryReader(ctx context.Context, opts ReadOptions) (*HistoryReader, error) {
	if info, err := os.Stat(opts.RepoURL); err == nil && info.IsDir() {
		repo, err := git.PlainOpen(opts.RepoURL)
		if err != nil {
			return nil, err
		}
		return &HistoryReader{repo: repo, opts: opts}, nil
	}

	cloneOpts := &git.CloneOptions{URL: opts.RepoURL}
	if branch := strings.TrimSpace(opts.Branch); branch != "" && !strings.EqualFold(branch, "HEAD") {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		cloneOpts.SingleBranch = true
	}

	log.Info().Str("url", opts.RepoURL).Msg("cloning repository")
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, cloneOpts)
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		log.Warn().Str("url", opts.RepoURL).Msg("remote repository is empty")
		if repo, err = git.Init(memory.NewStorage(), nil); err != nil {
			return nil, err
		}
		return &HistoryReader{repo: repo, opts: opts}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", opts.RepoURL, err)
	}
	return &HistoryReader{repo: repo, opts: opts}, nil
}

// Walk visits every non-merge commit reachable from the configured branch,
// oldest first.
func (r *HistoryReader) Walk(ctx context.Context, fn func(Commit) error) error {
	from, err := r.resolveStart()
	if errors.Is(err, errEmptyRepository) {
		log.Warn().Msg("repository has no commits")
		return nil
	}
	if err != nil {
		return err
	}

	cIter, err := r.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return err
	}

	// go-git yields newest first; collect so the walk can run forwards.
	var history []*object.Commit
	err = cIter.ForEach(func(c *object.Commit) error {
		history = append(history, c)
		return nil
	})
	if err != nil {
		return err
	}

	processed := 0
	for i := len(history) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}

		c := history[i]
		// Merge commits carry no modified files of their own.
		if c.NumParents() > 1 {
			continue
		}

		files, err := r.getModifiedFiles(ctx, c)
		if err != nil {
			return fmt.Errorf("commit %s: %w", c.Hash, err)
		}
		if len(files) == 0 {
			continue
		}

		// Extract first line of commit message
		message := c.Message
		if idx := strings.IndexByte(message, '\n'); idx != -1 {
			message = message[:idx]
		}

		commit := Commit{
			Info: CommitInfo{
				SHA:     c.Hash.String(),
				When:    c.Author.When,
				Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
				Message: message,
			},
			Files: files,
		}
		if err := fn(commit); err != nil {
			return err
		}

		processed++
		if r.opts.OnProgress != nil {
			r.opts.OnProgress(processed)
		}
	}

	return nil
}

func (r *HistoryReader) resolveStart() (plumbing.Hash, error) {
	branch := strings.TrimSpace(r.opts.Branch)
	if branch == "" || strings.EqualFold(branch, "HEAD") {
		ref, err := r.repo.Head()
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, errEmptyRepository
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return ref.Hash(), nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(branch))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve branch %q: %w", branch, err)
	}
	return *hash, nil
}

// getModifiedFiles diffs a commit against its first parent, or against the
// empty tree for root commits.
func (r *HistoryReader) getModifiedFiles(ctx context.Context, c *object.Commit) ([]ModifiedFile, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, r.diffOptions())
	if err != nil {
		return nil, err
	}

	var files []ModifiedFile
	matched := len(r.opts.Include) == 0

	for _, change := range changes {
		if !isFileEntry(change.From) && !isFileEntry(change.To) {
			continue
		}

		from, to := change.From.Name, change.To.Name

		var path, oldPath string
		var kind ChangeKind

		switch {
		case from == "" && to != "":
			path = to
			kind = ChangeKindAdded
		case from != "" && to == "":
			path = from
			kind = ChangeKindDeleted
		case from != to:
			path = to
			oldPath = from
			kind = ChangeKindRenamed
		default:
			path = to
			kind = ChangeKindModified
		}

		if path == "" {
			continue
		}

		if !matched && (matchesAny(r.opts.Include, path) || (oldPath != "" && matchesAny(r.opts.Include, oldPath))) {
			matched = true
		}

		file := ModifiedFile{Path: path, OldPath: oldPath, Kind: kind}
		if len(r.opts.ContentPaths) == 0 || matchesAny(r.opts.ContentPaths, path) {
			if err := loadContents(change, &file); err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
		}
		files = append(files, file)
	}

	if !matched {
		return nil, nil
	}
	return files, nil
}

func (r *HistoryReader) diffOptions() *object.DiffTreeOptions {
	switch r.opts.RenameDetect {
	case RenameDetectSimple:
		return &object.DiffTreeOptions{DetectRenames: true, RenameScore: 100, OnlyExactRenames: true}
	case RenameDetectAggressive:
		return object.DefaultDiffTreeOptions
	default:
		return &object.DiffTreeOptions{}
	}
}

func loadContents(change *object.Change, file *ModifiedFile) error {
	from, to, err := change.Files()
	if err != nil {
		return err
	}
	if from != nil {
		if file.Before, err = from.Contents(); err != nil {
			return err
		}
	}
	if to != nil {
		if file.After, err = to.Contents(); err != nil {
			return err
		}
	}
	return nil
}

func isFileEntry(entry object.ChangeEntry) bool {
	if entry.Name == "" {
		return false
	}
	return entry.TreeEntry.Mode.IsFile()
}

// matchesAny checks if a path matches any of the glob patterns.
func matchesAny(patterns []string, path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			log.Debug().Err(err).Str("pattern", pattern).Msg("invalid glob pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
