package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/depminer-go/config"
	"github.com/masmgr/depminer-go/internal/git"
	"github.com/masmgr/depminer-go/internal/manifest"
	"github.com/masmgr/depminer-go/internal/output"
)

func mineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (default: ./" + config.FileName + " or ~/" + config.FileName + ")",
		},
		&cli.StringFlag{
			Name:  "init-config",
			Usage: "Write the default configuration to the given path and exit",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Clone URL or local path to mine instead of the URL built from <owner> and <repo>",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to walk (default: HEAD)",
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "History engine (go-git, cli)",
		},
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (auto, off, simple, aggressive)",
		},
		&cli.StringFlag{
			Name:  "parser",
			Usage: "Manifest parser (tolerant, strict)",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "Repository-relative manifest path, matched exactly (default: pom.xml)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns a commit must touch to be read (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (csv, json, ci, markdown)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path, or - for stdout (default: <owner>_<repo>_dependency_commits.<ext>)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

// flagValues is the subset of the command line that overrides configuration.
type flagValues struct {
	URL          string
	Branch       string
	Engine       string
	RenameDetect string
	Parser       string
	Manifest     string
	Include      []string
	Format       string
	Output       string
}

func flagValuesFrom(c *cli.Context) flagValues {
	return flagValues{
		URL:          c.String("url"),
		Branch:       c.String("branch"),
		Engine:       c.String("engine"),
		RenameDetect: c.String("rename-detect"),
		Parser:       c.String("parser"),
		Manifest:     c.String("manifest"),
		Include:      c.StringSlice("include"),
		Format:       c.String("format"),
		Output:       c.String("output"),
	}
}

// mineOptions is the fully resolved configuration of one run.
type mineOptions struct {
	Owner        string
	Repo         string
	RepoURL      string
	Engine       git.Engine
	Read         git.ReadOptions
	Parser       manifest.Parser
	ManifestPath string
	Format       output.OutputFormat
	// OutputPath is empty when the report goes to stdout.
	OutputPath string
}

// resolveMineOptions applies flag overrides on top of cfg and validates the result.
func resolveMineOptions(cfg *config.Config, flags flagValues, owner, repo string) (*mineOptions, error) {
	if flags.Branch != "" {
		cfg.Repository.Branch = flags.Branch
	}
	if flags.Engine != "" {
		cfg.Repository.Engine = flags.Engine
	}
	if flags.RenameDetect != "" {
		cfg.Repository.RenameDetect = flags.RenameDetect
	}
	if flags.Parser != "" {
		cfg.Manifest.Parser = flags.Parser
	}
	if flags.Manifest != "" {
		cfg.Manifest.Path = flags.Manifest
	}
	if len(flags.Include) > 0 {
		cfg.Filters.Include = flags.Include
	}
	if flags.Format != "" {
		cfg.Output.Format = flags.Format
	}

	if err := cfg.Validate(); err != nil {
		return nil, invalidArgument("invalid configuration", err)
	}

	engine, err := git.ParseEngine(cfg.Repository.Engine)
	if err != nil {
		return nil, invalidArgument("invalid engine", err)
	}
	renameDetect, err := parseRenameDetectFlag(cfg.Repository.RenameDetect)
	if err != nil {
		return nil, invalidArgument("invalid rename detection mode", err)
	}
	parser, err := manifest.ParserFor(cfg.Manifest.Parser)
	if err != nil {
		return nil, invalidArgument("invalid parser", err)
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, invalidArgument("invalid output format", err)
	}

	repoURL := flags.URL
	if repoURL == "" {
		repoURL = cfg.CloneURL(owner, repo)
	}

	manifestPath := cfg.ManifestPath()

	outputPath := flags.Output
	switch outputPath {
	case "-":
		outputPath = ""
	case "":
		outputPath = filepath.Join(cfg.Output.Dir, output.DefaultFileName(owner, repo, format))
	}

	return &mineOptions{
		Owner:   owner,
		Repo:    repo,
		RepoURL: repoURL,
		Engine:  engine,
		Read: git.ReadOptions{
			RepoURL:      repoURL,
			Branch:       cfg.Repository.Branch,
			Include:      cfg.Filters.Include,
			ContentPaths: []string{manifestPath},
			RenameDetect: renameDetect,
		},
		Parser:       parser,
		ManifestPath: manifestPath,
		Format:       format,
		OutputPath:   outputPath,
	}, nil
}

// parseRenameDetectFlag parses a rename detection mode. The empty value means auto.
func parseRenameDetectFlag(s string) (git.RenameDetectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "simple", "exact":
		return git.RenameDetectSimple, nil
	case "off", "false", "none":
		return git.RenameDetectOff, nil
	case "aggressive", "similarity":
		return git.RenameDetectAggressive, nil
	default:
		return git.RenameDetectOff, fmt.Errorf("unknown rename detection mode %q (expected auto, off, simple or aggressive)", s)
	}
}
