package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

func TestParseGitRawEntries_RenameAndModify(t *testing.T) {
	// Body bytes are what comes after the pretty header line.
	// For -z formats, entries are NUL-separated and concatenated.
	body := []byte{}

	// Modify pom.xml
	body = append(body, []byte(":100644 100644 1111111 2222222 M")...)
	body = append(body, 0)
	body = append(body, []byte("pom.xml")...)
	body = append(body, 0)

	// Rename old.xml -> new.xml
	body = append(body, []byte(":100644 100644 3333333 4444444 R100")...)
	body = append(body, 0)
	body = append(body, []byte("old.xml")...)
	body = append(body, 0)
	body = append(body, []byte("new.xml")...)
	body = append(body, 0)

	// Commit separator written by -z
	body = append(body, 0)

	raw, _, err := parseGitRawEntries(body)
	if err != nil {
		t.Fatalf("parseGitRawEntries: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("raw entries = %d, expected 2", len(raw))
	}
	if raw[0].status != "M" || raw[0].path != "pom.xml" || raw[0].oldPath != "" {
		t.Fatalf("raw[0] = %#v", raw[0])
	}
	if raw[0].srcBlob != "1111111" || raw[0].dstBlob != "2222222" {
		t.Fatalf("raw[0] blobs = %q/%q, expected 1111111/2222222", raw[0].srcBlob, raw[0].dstBlob)
	}
	if raw[1].status != "R100" || raw[1].path != "new.xml" || raw[1].oldPath != "old.xml" {
		t.Fatalf("raw[1] = %#v", raw[1])
	}
}

func TestParseGitRawEntries_LeadingNewline(t *testing.T) {
	body := []byte{'\n'}
	body = append(body, []byte(":000000 100644 "+zeroBlob+" aaa A")...)
	body = append(body, 0)
	body = append(body, []byte("pom.xml")...)
	body = append(body, 0)

	raw, _, err := parseGitRawEntries(body)
	if err != nil {
		t.Fatalf("parseGitRawEntries: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("raw entries = %d, expected 1", len(raw))
	}
	if raw[0].srcMode != filemode.Empty || raw[0].dstMode != filemode.Regular {
		t.Fatalf("modes = %v/%v, expected empty/regular", raw[0].srcMode, raw[0].dstMode)
	}
	if raw[0].srcBlob != zeroBlob {
		t.Fatalf("srcBlob = %q, expected zero blob", raw[0].srcBlob)
	}
}

func TestParseGitRawEntries_Malformed(t *testing.T) {
	body := []byte(":100644 100644 M")
	body = append(body, 0)
	body = append(body, []byte("pom.xml")...)
	body = append(body, 0)

	if _, _, err := parseGitRawEntries(body); err == nil {
		t.Fatal("expected error for short meta, got nil")
	}
}

func TestSplitHeaderBody(t *testing.T) {
	header, body := splitHeaderBody([]byte("sha\x00parent\nrest"))
	if string(header) != "sha\x00parent" {
		t.Fatalf("header = %q", header)
	}
	if string(body) != "rest" {
		t.Fatalf("body = %q", body)
	}

	header, body = splitHeaderBody([]byte("only-header"))
	if string(header) != "only-header" || body != nil {
		t.Fatalf("splitHeaderBody(no newline) = %q, %q", header, body)
	}
}

func TestParseGitFileMode(t *testing.T) {
	tests := []struct {
		input   string
		want    filemode.FileMode
		wantErr bool
	}{
		{input: "", want: filemode.Empty},
		{input: "000000", want: filemode.Empty},
		{input: "100644", want: filemode.Regular},
		{input: "100755", want: filemode.Executable},
		{input: "120000", want: filemode.Symlink},
		{input: "160000", want: filemode.Submodule},
		{input: "xyz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseGitFileMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseGitFileMode(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseGitFileMode(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("parseGitFileMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestKindFromGitStatus(t *testing.T) {
	tests := []struct {
		status   string
		oldPath  string
		wantKind ChangeKind
		wantOld  string
	}{
		{status: "A", wantKind: ChangeKindAdded},
		{status: "M", wantKind: ChangeKindModified},
		{status: "D", wantKind: ChangeKindDeleted},
		{status: "R100", oldPath: "old.xml", wantKind: ChangeKindRenamed, wantOld: "old.xml"},
		{status: "", wantKind: ChangeKindModified},
	}

	for _, tt := range tests {
		gotKind, gotOld := kindFromGitStatus(tt.status, tt.oldPath)
		if gotKind != tt.wantKind || gotOld != tt.wantOld {
			t.Fatalf("kindFromGitStatus(%q,%q) = (%v,%q), want (%v,%q)", tt.status, tt.oldPath, gotKind, gotOld, tt.wantKind, tt.wantOld)
		}
	}
}

// cliRepo is a repository built with the git executable.
type cliRepo struct {
	t    *testing.T
	dir  string
	tick int
}

func newCLIRepo(t *testing.T) *cliRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
	r := &cliRepo{t: t, dir: t.TempDir()}
	r.git("init", "--quiet")
	return r
}

func (r *cliRepo) git(args ...string) string {
	r.t.Helper()
	date := fmt.Sprintf("%d +0000", time.Date(2021, 6, 1, 8, r.tick, 0, 0, time.UTC).Unix())
	cmd := exec.Command("git", append([]string{"-C", r.dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_AUTHOR_NAME=CLI Author",
		"GIT_AUTHOR_EMAIL=cli@example.com",
		"GIT_COMMITTER_NAME=CLI Author",
		"GIT_COMMITTER_EMAIL=cli@example.com",
		"GIT_AUTHOR_DATE="+date,
		"GIT_COMMITTER_DATE="+date,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func (r *cliRepo) write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	r.git("add", rel)
}

func (r *cliRepo) commit(msg string) string {
	r.t.Helper()
	r.git("commit", "--quiet", "-m", msg)
	r.tick++
	return r.git("rev-parse", "HEAD")
}

// pomHistory adds, bumps and deletes pom.xml, with a docs-only commit in between.
func pomHistory(r *cliRepo) []string {
	r.write("pom.xml", "v1")
	first := r.commit("initial")
	r.write("README.md", "docs")
	r.commit("docs only")
	r.write("pom.xml", "v2")
	second := r.commit("bump")
	r.git("rm", "--quiet", "pom.xml")
	third := r.commit("drop pom")
	return []string{first, second, third}
}

func collectCLI(t *testing.T, reader *CLIReader) []Commit {
	t.Helper()
	var commits []Commit
	if err := reader.Walk(context.Background(), func(c Commit) error {
		commits = append(commits, c)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return commits
}

func assertPOMHistory(t *testing.T, commits []Commit, shas []string) {
	t.Helper()
	if len(commits) != 3 {
		t.Fatalf("commits = %d, expected 3 (docs-only commit filtered)", len(commits))
	}
	for i, c := range commits {
		if c.Info.SHA != shas[i] {
			t.Errorf("commits[%d].SHA = %s, expected %s", i, c.Info.SHA, shas[i])
		}
		if c.Info.Author.Name != "CLI Author" || c.Info.Author.Email != "cli@example.com" {
			t.Errorf("commits[%d].Author = %+v", i, c.Info.Author)
		}
		if len(c.Files) != 1 || c.Files[0].Path != "pom.xml" {
			t.Fatalf("commits[%d].Files = %#v", i, c.Files)
		}
	}

	if want := time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC); !commits[0].Info.When.Equal(want) {
		t.Errorf("root commit When = %v, expected %v", commits[0].Info.When, want)
	}
	if commits[0].Info.Message != "initial" {
		t.Errorf("root commit Message = %q", commits[0].Info.Message)
	}

	added := commits[0].Files[0]
	if added.Kind != ChangeKindAdded || added.HasBefore() || added.Before != "" || added.After != "v1" {
		t.Errorf("root commit file = %#v", added)
	}
	modified := commits[1].Files[0]
	if modified.Kind != ChangeKindModified || modified.Before != "v1" || modified.After != "v2" {
		t.Errorf("modified file = %#v", modified)
	}
	deleted := commits[2].Files[0]
	if deleted.Kind != ChangeKindDeleted || deleted.HasAfter() || deleted.Before != "v2" || deleted.After != "" {
		t.Errorf("deleted file = %#v", deleted)
	}
}

func TestCLIReader_Walk_LocalRepository(t *testing.T) {
	r := newCLIRepo(t)
	shas := pomHistory(r)

	reader, err := NewCLIReader(context.Background(), ReadOptions{
		RepoURL:      r.dir,
		Include:      []string{"**/*.xml", "*.xml"},
		ContentPaths: []string{"pom.xml"},
		RenameDetect: RenameDetectSimple,
	})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}
	if reader.tempDir != "" {
		t.Errorf("local directory was cloned into %q", reader.tempDir)
	}

	var progress []int
	reader.opts.OnProgress = func(n int) { progress = append(progress, n) }

	assertPOMHistory(t, collectCLI(t, reader), shas)
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v, expected [1 2 3]", progress)
	}
	if err := reader.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := os.Stat(r.dir); err != nil {
		t.Errorf("Close removed the source repository: %v", err)
	}
}

func TestCLIReader_Walk_ClonedRepositoryIsRemovedOnClose(t *testing.T) {
	r := newCLIRepo(t)
	shas := pomHistory(r)

	reader, err := NewCLIReader(context.Background(), ReadOptions{
		RepoURL:      "file://" + filepath.ToSlash(r.dir),
		Include:      []string{"**/*.xml", "*.xml"},
		ContentPaths: []string{"pom.xml"},
	})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}
	if reader.tempDir == "" {
		t.Fatal("expected a temporary clone")
	}
	clone := reader.tempDir
	if _, err := os.Stat(filepath.Join(clone, ".git")); err != nil {
		t.Fatalf("clone missing: %v", err)
	}

	assertPOMHistory(t, collectCLI(t, reader), shas)

	if err := reader.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(clone); !os.IsNotExist(err) {
		t.Errorf("clone %q still exists after Close (stat err = %v)", clone, err)
	}
}

func TestCLIReader_Walk_EmptyRepository(t *testing.T) {
	r := newCLIRepo(t)

	reader, err := NewCLIReader(context.Background(), ReadOptions{RepoURL: r.dir})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}
	if commits := collectCLI(t, reader); len(commits) != 0 {
		t.Fatalf("commits = %d, expected 0", len(commits))
	}
}

func TestCLIReader_CloneFailure(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}

	_, err := NewCLIReader(context.Background(), ReadOptions{
		RepoURL: "file://" + filepath.ToSlash(filepath.Join(t.TempDir(), "missing")),
	})
	if err == nil {
		t.Fatal("expected clone error, got nil")
	}
}
