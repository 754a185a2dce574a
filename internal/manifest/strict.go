package manifest

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// StrictParser decodes the manifest as XML and collects every <dependency>
// element whatever its namespace. It only sees documents that are well-formed
// up to the point of failure; a syntax error discards the whole snapshot.
type StrictParser struct{}

type dependencyElement struct {
	GroupID    *string `xml:"groupId"`
	ArtifactID *string `xml:"artifactId"`
	Version    *string `xml:"version"`
}

// Parse implements Parser.
func (StrictParser) Parse(text string) Snapshot {
	if strings.TrimSpace(text) == "" {
		return Snapshot{}
	}

	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = charset.NewReaderLabel

	b := newSnapshotBuilder()
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Debug().Err(err).Msg("manifest is not well-formed XML")
			return Snapshot{}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "dependency" {
			continue
		}

		var dep dependencyElement
		if err := decoder.DecodeElement(&dep, &start); err != nil {
			log.Debug().Err(err).Msg("manifest is not well-formed XML")
			return Snapshot{}
		}

		group := trimmed(dep.GroupID)
		artifact := trimmed(dep.ArtifactID)
		if group == "" || artifact == "" {
			continue
		}

		version := NoVersion
		// An empty <version/> counts as absent, as in the tolerant scan.
		if v := trimmed(dep.Version); v != "" {
			version = DeclaredVersion(v)
		}
		b.set(NewDependencyKey(group, artifact), version)
	}
	return b.build()
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
