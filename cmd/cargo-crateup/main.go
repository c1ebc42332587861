package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crateup/internal/cli"
	"github.com/matzehuels/crateup/pkg/cargo"
	cerrors "github.com/matzehuels/crateup/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(cli.NormalizeArgs(args))
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			originalPreRun(cmd, args)
		}
	}

	return root.ExecuteContext(ctx)
}

// exitCode reports err and picks the process exit status. A failed
// reinstall exits with cargo's own status code.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130 // Standard shell convention for SIGINT
	}
	var exitErr *cargo.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Exited with status code: %d\n", exitErr.Code)
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", cerrors.UserMessage(err))
	return 1
}
