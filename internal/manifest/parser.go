package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Parser turns manifest text into a dependency snapshot. Implementations never
// fail: malformed input yields whatever could be recovered, possibly nothing.
type Parser interface {
	Parse(text string) Snapshot
}

// Parser names accepted by ParserFor.
const (
	ParserTolerant = "tolerant"
	ParserStrict   = "strict"
)

// ParserFor returns the parser registered under name. The empty name selects
// the tolerant parser.
func ParserFor(name string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ParserTolerant:
		return TolerantParser{}, nil
	case ParserStrict:
		return StrictParser{}, nil
	default:
		return nil, fmt.Errorf("unknown parser %q (expected %q or %q)", name, ParserTolerant, ParserStrict)
	}
}

var (
	dependencyBlock = regexp.MustCompile(`(?s)<dependency>(.*?)</dependency>`)
	groupIDTag      = regexp.MustCompile(`<groupId>([^<]+)</groupId>`)
	artifactIDTag   = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)
	versionTag      = regexp.MustCompile(`<version>([^<]+)</version>`)
)

// TolerantParser scans the raw text for <dependency> blocks without requiring
// well-formed XML, so truncated or templated manifests still parse.
type TolerantParser struct{}

// Parse implements Parser.
func (TolerantParser) Parse(text string) Snapshot {
	if strings.TrimSpace(text) == "" {
		return Snapshot{}
	}

	b := newSnapshotBuilder()
	for _, block := range dependencyBlock.FindAllStringSubmatch(text, -1) {
		body := block[1]

		group := firstSubmatch(groupIDTag, body)
		artifact := firstSubmatch(artifactIDTag, body)
		if group == "" || artifact == "" {
			continue
		}

		version := NoVersion
		if v := firstSubmatch(versionTag, body); v != "" {
			version = DeclaredVersion(v)
		}

		b.set(NewDependencyKey(group, artifact), version)
	}
	return b.build()
}

func firstSubmatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
