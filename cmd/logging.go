package cmd

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging routes diagnostics to out so stdout stays reserved for reports.
func setupLogging(out io.Writer, level string) error {
	lvl := zerolog.WarnLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return invalidArgument("invalid log level "+level, err)
		}
		lvl = parsed
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: true})
	zerolog.SetGlobalLevel(lvl)
	return nil
}
