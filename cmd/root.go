package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "depminer",
		Usage:     "Mine Maven dependency changes from Git history",
		UsageText: "depminer [options] <owner> <repo>",
		ArgsUsage: "<owner> <repo>",
		Version:   "1.0.0",
		Flags:     mineFlags(),
		Action:    mineAction,
		// The action prints usage itself for a wrong argument count.
		HideHelpCommand: true,
	}
}

// Run executes the CLI application.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		stop()
		os.Exit(exitCodeForError(err))
	}
}
