package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/depminer-go/config"
	"github.com/masmgr/depminer-go/internal/git"
	"github.com/masmgr/depminer-go/internal/miner"
	"github.com/masmgr/depminer-go/internal/output"
)

const progressEvery = 500

func mineAction(c *cli.Context) error {
	if path := c.String("init-config"); path != "" {
		return initConfig(path, c.App.Writer)
	}
	if c.NArg() != 2 {
		_ = cli.ShowAppHelp(c)
		return invalidArgument(fmt.Sprintf("expected exactly 2 arguments <owner> <repo>, got %d", c.NArg()), nil)
	}
	owner, repo := c.Args().Get(0), c.Args().Get(1)

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return invalidArgument("failed to load config", err)
	}

	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if err := setupLogging(c.App.ErrWriter, level); err != nil {
		return err
	}

	opts, err := resolveMineOptions(cfg, flagValuesFrom(c), owner, repo)
	if err != nil {
		return err
	}

	stdout := c.App.Writer
	if stdout == nil {
		stdout = color.Output
	}
	return runMine(c.Context, opts, stdout, c.App.ErrWriter)
}

// initConfig writes the default configuration to path. An existing file is
// never overwritten.
func initConfig(path string, out io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return invalidArgument("refusing to overwrite existing config "+path, nil)
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return internalError("failed to write config "+path, err)
	}
	fmt.Fprintf(out, "Configuration written to: %s\n", path)
	return nil
}

// runMine walks the repository, writes the report and prints the summary.
// The summary goes to errOut when the report itself is written to stdout.
func runMine(ctx context.Context, opts *mineOptions, stdout, errOut io.Writer) error {
	readOpts := opts.Read
	readOpts.OnProgress = func(processed int) {
		if processed%progressEvery == 0 {
			log.Info().Int("commits", processed).Msg("walking history")
		}
	}

	walker, closeWalker, err := git.OpenWalker(ctx, opts.Engine, readOpts)
	if err != nil {
		return notFound("failed to open repository "+opts.RepoURL, err)
	}
	defer func() {
		if err := closeWalker(); err != nil {
			log.Warn().Err(err).Msg("failed to clean up clone")
		}
	}()

	log.Info().
		Str("url", opts.RepoURL).
		Str("engine", string(opts.Engine)).
		Str("manifest", opts.ManifestPath).
		Msg("mining dependency changes")

	result, err := miner.New(walker, opts.Parser, opts.ManifestPath).Mine(ctx)
	if err != nil {
		return internalError("failed to mine "+opts.RepoURL, err)
	}

	report := output.NewDependencyReport(opts.RepoURL, result, time.Now())
	writer := output.NewReportWriter(opts.Format)
	if err := writer.Write(report, output.OutputOptions{Format: opts.Format, OutputPath: opts.OutputPath}); err != nil {
		return internalError("failed to write report", err)
	}

	summaryOut := stdout
	if opts.OutputPath == "" && errOut != nil {
		summaryOut = errOut
	}
	return (&output.ConsoleSummaryWriter{Out: summaryOut}).Write(report, opts.OutputPath)
}
