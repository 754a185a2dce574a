package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/rs/zerolog/log"
)

type gitRawEntry struct {
	srcMode filemode.FileMode
	dstMode filemode.FileMode
	srcBlob string
	dstBlob string
	status  string // e.g. "M", "A", "D", "R100"
	path    string // destination path (or path for non-renames)
	oldPath string // source path for renames
}

const zeroBlob = "0000000000000000000000000000000000000000"

// CLIReader walks commit history by shelling out to the git executable.
// Remote URLs are cloned into a temporary directory that Close removes.
type CLIReader struct {
	repoPath string
	tempDir  string
	opts     ReadOptions
}

// NewCLIReader prepares a CLI-backed walker for opts.RepoURL.
func NewCLIReader(ctx context.Context, opts ReadOptions) (*CLIReader, error) {
	if info, err := os.Stat(opts.RepoURL); err == nil && info.IsDir() {
		return &CLIReader{repoPath: opts.RepoURL, opts: opts}, nil
	}

	tempDir, err := os.MkdirTemp("", "depminer-*")
	if err != nil {
		return nil, err
	}

	args := []string{"clone", "--quiet"}
	if branch := strings.TrimSpace(opts.Branch); branch != "" && !strings.EqualFold(branch, "HEAD") {
		args = append(args, "--branch", branch, "--single-branch")
	}
	args = append(args, opts.RepoURL, tempDir)

	log.Info().Str("url", opts.RepoURL).Str("dir", tempDir).Msg("cloning repository")
	if out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput(); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return &CLIReader{repoPath: tempDir, tempDir: tempDir, opts: opts}, nil
}

// Close removes the temporary clone, if any.
func (r *CLIReader) Close() error {
	if r.tempDir == "" {
		return nil
	}
	return os.RemoveAll(r.tempDir)
}

// Walk visits every non-merge commit oldest first.
func (r *CLIReader) Walk(ctx context.Context, fn func(Commit) error) error {
	// Each commit header line is prefixed by 0x1e (record separator), then NUL-separated fields,
	// and ends with a newline. This makes the --raw -z output reliably parseable as
	// "records" split by 0x1e.
	const format = "%x1e%H%x00%P%x00%aI%x00%an%x00%ae%x00%s%n"

	args := []string{
		"-C", r.repoPath,
		"log",
		"--reverse",
		"--root",
		"--no-color",
		"--no-merges",
		"--no-abbrev",
		"--pretty=format:" + format,
		"--raw", "-z",
	}

	switch r.opts.RenameDetect {
	case RenameDetectOff:
		args = append(args, "--no-renames")
	case RenameDetectSimple:
		args = append(args, "-M100%")
	case RenameDetectAggressive:
		// Match go-git's default threshold (60).
		args = append(args, "-M60%")
	}

	rev := strings.TrimSpace(r.opts.Branch)
	if rev != "" && !strings.EqualFold(rev, "HEAD") {
		args = append(args, rev)
	} else if !r.hasHead(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Warn().Str("repo", r.repoPath).Msg("repository has no commits")
		return nil
	}

	out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git log failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	records := bytes.Split(out, []byte{0x1e})
	processed := 0

	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		commit, ok, err := r.parseRecord(ctx, rec)
		if err != nil {
			return err
		}
		if !ok {
			continue
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

func (r *CLIReader) hasHead(ctx context.Context) bool {
	return exec.CommandContext(ctx, "git", "-C", r.repoPath, "rev-parse", "--verify", "--quiet", "HEAD").Run() == nil
}

func (r *CLIReader) parseRecord(ctx context.Context, rec []byte) (Commit, bool, error) {
	header, body := splitHeaderBody(rec)
	if len(header) == 0 {
		return Commit{}, false, nil
	}

	fields := bytes.SplitN(header, []byte{0x00}, 6)
	if len(fields) < 6 {
		return Commit{}, false, fmt.Errorf("unexpected git log header format")
	}

	sha := string(fields[0])
	when, err := time.Parse(time.RFC3339, string(fields[2]))
	if err != nil {
		return Commit{}, false, fmt.Errorf("parse author date: %w", err)
	}

	rawEntries, _, err := parseGitRawEntries(body)
	if err != nil {
		return Commit{}, false, err
	}

	files := make([]ModifiedFile, 0, len(rawEntries))
	matched := len(r.opts.Include) == 0
	for _, e := range rawEntries {
		if !e.srcMode.IsFile() && !e.dstMode.IsFile() {
			continue
		}
		if e.path == "" {
			continue
		}

		kind, oldPath := kindFromGitStatus(e.status, e.oldPath)
		if !matched && (matchesAny(r.opts.Include, e.path) || (oldPath != "" && matchesAny(r.opts.Include, oldPath))) {
			matched = true
		}

		file := ModifiedFile{Path: e.path, OldPath: oldPath, Kind: kind}
		if len(r.opts.ContentPaths) == 0 || matchesAny(r.opts.ContentPaths, e.path) {
			if file.Before, err = r.readBlob(ctx, e.srcBlob); err != nil {
				return Commit{}, false, err
			}
			if file.After, err = r.readBlob(ctx, e.dstBlob); err != nil {
				return Commit{}, false, err
			}
		}
		files = append(files, file)
	}

	if !matched || len(files) == 0 {
		return Commit{}, false, nil
	}

	return Commit{
		Info: CommitInfo{
			SHA:     sha,
			When:    when,
			Author:  AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
			Message: string(fields[5]),
		},
		Files: files,
	}, true, nil
}

func (r *CLIReader) readBlob(ctx context.Context, blob string) (string, error) {
	if blob == "" || blob == zeroBlob {
		return "", nil
	}
	out, err := exec.CommandContext(ctx, "git", "-C", r.repoPath, "cat-file", "blob", blob).Output()
	if err != nil {
		return "", fmt.Errorf("git cat-file %s failed: %w", blob, err)
	}
	return string(out), nil
}

func splitHeaderBody(rec []byte) (header []byte, body []byte) {
	// The pretty line is followed by '\n', then diff output.
	if idx := bytes.IndexByte(rec, '\n'); idx != -1 {
		return rec[:idx], rec[idx+1:]
	}
	return rec, nil
}

func parseGitRawEntries(body []byte) ([]gitRawEntry, int, error) {
	i := 0
	for i < len(body) && (body[i] == '\n' || body[i] == '\r' || body[i] == 0) {
		i++
	}

	entries := make([]gitRawEntry, 0, 16)

	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing NUL)")
		}

		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, 0, fmt.Errorf("unexpected git --raw meta: %q", string(meta))
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, 0, err
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, 0, err
		}

		status := fields[len(fields)-1]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing path)")
		}

		path := path1
		oldPath := ""
		if len(status) > 0 && (status[0] == 'R' || status[0] == 'C') {
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, 0, fmt.Errorf("unexpected git --raw format (missing rename path)")
			}
			oldPath = path1
			path = path2
		}

		entries = append(entries, gitRawEntry{
			srcMode: srcMode,
			dstMode: dstMode,
			srcBlob: fields[2],
			dstBlob: fields[3],
			status:  status,
			path:    path,
			oldPath: oldPath,
		})
	}

	return entries, i, nil
}

func parseGitFileMode(s string) (filemode.FileMode, error) {
	if s == "" {
		return filemode.Empty, nil
	}
	// Modes are printed as octal (e.g. 100644, 120000, 160000, 000000).
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

func kindFromGitStatus(status, oldPath string) (ChangeKind, string) {
	if status == "" {
		return ChangeKindModified, ""
	}
	switch status[0] {
	case 'A':
		return ChangeKindAdded, ""
	case 'D':
		return ChangeKindDeleted, ""
	case 'R':
		return ChangeKindRenamed, oldPath
	default:
		return ChangeKindModified, ""
	}
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}
