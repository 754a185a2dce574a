package output

import (
	"strings"
	"testing"
)

func TestMarkdownReportWriter_Write(t *testing.T) {
	data := writeToTemp(t, &MarkdownReportWriter{}, "report.md")

	for _, want := range []string{
		"# Dependency Changes",
		"**Repository:** https://github.com/acme/widgets.git",
		"**Commits with dependency changes:** 2",
		"| `11111111` | 2019-07-01 09:30:00+01:00 | Doe, Jane | `org.a:lib` | added |",
		"| `22222222` | 2019-08-02 18:00:05+00:00 | bob\\_builder | `org.b:util` | removed |",
	} {
		if !strings.Contains(data, want) {
			t.Errorf("output missing %q:\n%s", want, data)
		}
	}
}

func TestMarkdownReportWriter_NoEvents(t *testing.T) {
	report := testReport()
	report.Events = nil

	path := t.TempDir() + "/empty.md"
	if err := (&MarkdownReportWriter{}).Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := readTestFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "No dependency changes found.") {
		t.Errorf("output = %s", data)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Pipe", input: "a|b", expected: "a\\|b"},
		{name: "Asterisk", input: "a*b", expected: "a\\*b"},
		{name: "Underscore", input: "a_b", expected: "a\\_b"},
		{name: "Backtick", input: "a`b", expected: "a\\`b"},
		{name: "Multiple specials", input: "a|b*c_d", expected: "a\\|b\\*c\\_d"},
		{name: "No specials", input: "plain text", expected: "plain text"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := escapeMarkdown(tt.input)
			if result != tt.expected {
				t.Errorf("escapeMarkdown(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestShortSHA(t *testing.T) {
	if got := shortSHA("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortSHA() = %q", got)
	}
	if got := shortSHA("abc"); got != "abc" {
		t.Errorf("shortSHA(short) = %q", got)
	}
}
