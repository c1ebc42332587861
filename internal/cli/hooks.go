package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crateup/pkg/observability"
)

// logHooks traces registry activity at debug level.
type logHooks struct {
	observability.NoopHTTPHooks
	logger *log.Logger
}

func (h logHooks) OnLookupStart(_ context.Context, name string) {
	h.logger.Debug("lookup", "crate", name)
}

func (h logHooks) OnLookupComplete(_ context.Context, name, latest string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("lookup failed", "crate", name, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("lookup done", "crate", name, "latest", latest, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h logHooks) OnInventory(_ context.Context, total, upgradable int, d time.Duration, err error) {
	if err == nil {
		h.logger.Debug("inventory", "crates", total, "upgradable", upgradable, "elapsed", d.Round(time.Millisecond))
	}
}

func (h logHooks) OnReinstall(_ context.Context, names []string, d time.Duration, err error) {
	h.logger.Debug("reinstall", "crates", len(names), "elapsed", d.Round(time.Millisecond), "err", err)
}

// installHooks routes observability events to the CLI logger.
func (c *CLI) installHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetLookupHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetReconcileHooks(h)
}
