package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crateup/pkg/config"
	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/output"
	"github.com/matzehuels/crateup/pkg/reconcile"
)

// errNoIntent is returned when neither --list nor --update was given.
var errNoIntent = cerrors.New(cerrors.ErrCodeInvalidInput, "one of --list or --update is required")

type rootOptions struct {
	list        bool
	update      bool
	locked      bool
	strict      bool
	interactive bool
	format      string
}

func (c *CLI) rootCommand() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   binName,
		Short: "Update crates installed with cargo install",
		Long: `crateup lists the crates installed with "cargo install", checks crates.io
for newer versions and reinstalls the outdated ones in a single
"cargo install --force" call.

Crates installed from git or a local path are listed but never reinstalled.`,
		Example: `  # Show installed crates and their latest versions
  cargo crateup --list

  # Reinstall every outdated crate, honouring lock files
  cargo crateup --update --locked

  # Choose which crates to reinstall
  cargo crateup --update --interactive`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.installHooks()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.list && !opts.update {
				_ = cmd.Usage()
				return errNoIntent
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Locked = cfg.Locked || opts.locked
			cfg.Strict = cfg.Strict || opts.strict

			if opts.list {
				format, err := output.ParseFormat(opts.format)
				if err != nil {
					return err
				}
				return c.runList(cmd.Context(), cfg, format)
			}
			return c.runUpdate(cmd.Context(), cfg, opts.interactive)
		},
	}

	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list installed crates and their latest versions")
	cmd.Flags().BoolVarP(&opts.update, "update", "u", false, "reinstall crates that have a newer version")
	cmd.Flags().BoolVar(&opts.locked, "locked", false, "pass --locked to cargo install")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail if any crate cannot be looked up")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose which crates to update")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(output.FormatTable), "list output format (table, json, yaml)")
	cmd.MarkFlagsMutuallyExclusive("list", "update")
	cmd.MarkFlagsMutuallyExclusive("list", "interactive")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(output.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runList prints the report of every installed crate.
func (c *CLI) runList(ctx context.Context, cfg *config.Config, format output.Format) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	stop := func() {}
	if !format.Structured() {
		stop = c.startSpinner(ctx, "Checking crates.io for updates...")
	}
	rep, err := c.newDriver(cfg).Inventory(ctx)
	stop()
	if err != nil {
		return err
	}
	logger.Debug("report", "run", rep.RunID)

	if err := output.Write(c.Out, format, rep); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInternal, err, "write report")
	}
	if format.Structured() {
		return nil
	}

	printFailures(rep)
	n := len(rep.Upgradable())
	if n == 0 {
		printSuccess("All crates from crates.io are up to date")
	} else {
		printInfo("%s can be updated, run with %s to install", plural(n, "crate"), StyleHighlight.Render("--update"))
	}
	prog.done(fmt.Sprintf("Checked %s", plural(len(rep.Packages), "crate")))
	return nil
}

// runUpdate reinstalls the upgradable crates.
func (c *CLI) runUpdate(ctx context.Context, cfg *config.Config, interactive bool) error {
	opts := reconcile.UpdateOptions{
		Locked: cfg.Locked,
		OnPlan: printPlan,
	}
	if interactive {
		if !c.interactive() {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "--interactive needs a terminal")
		}
		opts.Select = pickCrates
	}

	stop := c.startSpinner(ctx, "Checking crates.io for updates...")
	planned := opts.OnPlan
	opts.OnPlan = func(p reconcile.Plan) {
		stop()
		planned(p)
	}

	res, err := c.newDriver(cfg).Update(ctx, opts)
	stop()
	if err != nil {
		if res != nil && len(res.Reinstalled) > 0 && ctx.Err() == nil {
			printError("Updating %s failed", plural(len(res.Reinstalled), "crate"))
		}
		return err
	}

	if res.NothingToUpdate {
		printInfo("Nothing to update, run with %s to view available updates.", StyleHighlight.Render("--list"))
		return nil
	}
	printSuccess("Updated %s", plural(len(res.Reinstalled), "crate"))
	return nil
}

func printPlan(p reconcile.Plan) {
	printNames("Skipped, not installed from crates.io:", p.Skipped)
	printNames("Ignored by config:", p.Ignored)
	if len(p.Unresolved) > 0 {
		printWarning("Could not check %s", strings.Join(p.Unresolved, ", "))
	}
	printNames("Upgradable:", p.Upgradable)
}

// printFailures summarises lookup failures and unparsed lines below a table.
// Each one has already been logged with its cause.
func printFailures(rep *reconcile.Report) {
	if len(rep.Failures) > 0 {
		names := make([]string, len(rep.Failures))
		for i, f := range rep.Failures {
			names[i] = f.Name
		}
		printWarning("Could not check %s", strings.Join(names, ", "))
		printDetail("their latest version is shown as %q", inventory.Unknown)
	}
	if n := len(rep.Diagnostics); n > 0 {
		printWarning("%s of cargo install --list output %s incomplete", plural(n, "line"), wasWere(n))
	}
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}
