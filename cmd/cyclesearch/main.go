package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cyclesearch/internal/cli"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, cerrors.UserMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var verbose int

	c := cli.New(os.Stderr, cli.LogWarn)
	root := c.RootCommand()

	root.PersistentFlags().CountVarP(&verbose, "verbose", "v", "verbose logging; -vv also reports buffer fills")

	// The log level is only known once flags are parsed.
	originalPreRun := root.PersistentPreRun
	root.PersistentPreRun = nil
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.Verbosity = verbose
		c.SetLogLevel(cli.LevelFor(verbose))

		if originalPreRun != nil {
			originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
