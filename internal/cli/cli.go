package cli

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crateup/pkg/buildinfo"
	"github.com/matzehuels/crateup/pkg/cargo"
	"github.com/matzehuels/crateup/pkg/config"
	"github.com/matzehuels/crateup/pkg/httputil"
	"github.com/matzehuels/crateup/pkg/integrations"
	"github.com/matzehuels/crateup/pkg/integrations/crates"
	"github.com/matzehuels/crateup/pkg/reconcile"
	"github.com/matzehuels/crateup/pkg/resolve"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the cargo subcommand name.
	appName = "crateup"

	// binName is the executable cargo looks up for "cargo crateup".
	binName = "cargo-" + appName

	// retryDelay is the initial backoff between registry attempts.
	retryDelay = 500 * time.Millisecond
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives reports and status lines.
	Out io.Writer

	configPath string

	// Swappable for tests.
	newManager  func(cfg *config.Config) reconcile.Manager
	newFetcher  func(cfg *config.Config) resolve.Fetcher
	interactive func() bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		Out:         os.Stdout,
		newManager:  defaultManager,
		newFetcher:  defaultFetcher,
		interactive: stderrIsTerminal,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.rootCommand()
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/crateup/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Wiring
// =============================================================================

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, true)
	}
	path, err := config.DefaultPath()
	if err != nil {
		c.Logger.Debug("no config directory", "err", err)
		return config.Default(), nil
	}
	return config.Load(path, false)
}

// newDriver assembles the reconciliation driver from configuration.
func (c *CLI) newDriver(cfg *config.Config) *reconcile.Driver {
	resolver := resolve.New(c.newFetcher(cfg), resolve.Options{
		Strict: cfg.Strict,
		Logger: c.Logger,
	})
	return reconcile.NewDriver(c.newManager(cfg), resolver, reconcile.Options{
		Ignore: cfg.Ignore,
		Logger: c.Logger,
	})
}

func defaultManager(cfg *config.Config) reconcile.Manager {
	return cargo.New(cfg.Cargo)
}

func defaultFetcher(cfg *config.Config) resolve.Fetcher {
	opts := []integrations.Option{
		integrations.WithTimeout(cfg.Timeout.Duration),
		integrations.WithRetry(httputil.Policy{Attempts: cfg.Attempts, Delay: retryDelay}),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, integrations.WithHeader("User-Agent", cfg.UserAgent))
	}
	return resolve.NewCrates(crates.NewClient(cfg.RegistryURL, opts...))
}

// stderrIsTerminal reports whether progress output and prompts can be shown.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NormalizeArgs drops the subcommand name cargo inserts when the binary is
// run as "cargo crateup ...".
func NormalizeArgs(args []string) []string {
	if len(args) > 0 && args[0] == appName {
		return args[1:]
	}
	return args
}
