package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/crateup/pkg/server"
)

// serveCommand creates the serve command, which exposes reports over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve installed crate reports over HTTP",
		Long: `Serve a JSON API describing the installed crates.

Each request lists the installed crates and checks crates.io again, so
responses always reflect the current state of the machine.

Endpoints:
  GET /healthz
  GET /api/v1/packages[?format=yaml]
  GET /api/v1/packages/upgradable[?format=yaml]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			cfg.Strict = cfg.Strict || strict

			router := server.NewRouter(c.newDriver(cfg), c.Logger)
			return server.New(cfg.Serve.Addr, router, c.Logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail requests if any crate cannot be looked up")

	return cmd
}
