package reconcile

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/crateup/pkg/cargo"
	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/observability"
	"github.com/matzehuels/crateup/pkg/resolve"
)

// Manager is the package manager the driver reconciles against.
type Manager interface {
	ListInstalled(ctx context.Context) (*inventory.Snapshot, error)
	Reinstall(ctx context.Context, names []string, opts cargo.ReinstallOptions) error
}

// Resolver fills in the latest published versions of a batch of records.
type Resolver interface {
	Resolve(ctx context.Context, records []inventory.Record) (*resolve.Result, error)
}

// Options configures a [Driver].
type Options struct {
	Ignore []string    // Crates never reinstalled in update mode
	Logger *log.Logger // Nil discards
}

// Driver runs reconciliation: list the installed crates, resolve them
// against the registry and, in update mode, reinstall the outdated ones.
type Driver struct {
	manager  Manager
	resolver Resolver
	ignore   []string
	logger   *log.Logger
	now      func() time.Time
}

// NewDriver creates a Driver.
func NewDriver(m Manager, r Resolver, opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Driver{
		manager:  m,
		resolver: r,
		ignore:   slices.Clone(opts.Ignore),
		logger:   logger,
		now:      time.Now,
	}
}

// Inventory builds a report of every installed crate. It never changes
// what is installed.
func (d *Driver) Inventory(ctx context.Context) (*Report, error) {
	start := d.now()
	runID := uuid.New().String()
	logger := d.logger.With("run", runID[:8])

	rep, err := d.inventory(ctx, runID, logger)
	total, upgradable := 0, 0
	if rep != nil {
		total, upgradable = len(rep.Packages), len(rep.Upgradable())
	}
	observability.Reconcile().OnInventory(ctx, total, upgradable, d.now().Sub(start), err)
	return rep, err
}

func (d *Driver) inventory(ctx context.Context, runID string, logger *log.Logger) (*Report, error) {
	snap, err := d.manager.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	for _, diag := range snap.Diagnostics {
		logger.Warn("unparsed listing line", "line", diag.Line, "reason", diag.Reason, "text", diag.Text)
	}
	logger.Debug("listed installed crates", "count", len(snap.Records))

	res, err := d.resolver.Resolve(ctx, snap.Records)
	if err != nil {
		return nil, err
	}

	rep := NewReport(runID, d.now().UTC(), res.Records)
	rep.Failures = res.Failures
	rep.Diagnostics = snap.Diagnostics
	logger.Debug("resolved", "packages", len(rep.Packages), "failures", len(rep.Failures))
	return rep, nil
}

// SelectFunc narrows the set of crates to reinstall, for example by asking
// the user. Returning names outside candidates has no effect.
type SelectFunc func(ctx context.Context, candidates []Entry) ([]string, error)

// UpdateOptions controls [Driver.Update].
type UpdateOptions struct {
	Locked bool       // Pass --locked to the reinstall
	Select SelectFunc // Optional; nil reinstalls every upgradable crate
	OnPlan func(Plan) // Optional; called once the plan is known, before any selection
}

// UpdateResult describes what an update run did.
type UpdateResult struct {
	Report *Report
	Plan   Plan

	// Reinstalled lists the crates passed to the reinstall command. It is
	// empty when nothing was run.
	Reinstalled []string

	// NothingToUpdate is set when no reinstall was needed or none was selected.
	NothingToUpdate bool
}

// Update reinstalls every upgradable crate with one package manager call.
// When nothing is upgradable it succeeds without running anything.
//
// The returned result is non-nil whenever the inventory succeeded, even if
// the reinstall failed, so callers can still report the plan.
func (d *Driver) Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	rep, err := d.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	res := &UpdateResult{Report: rep, Plan: NewPlan(rep, d.ignore)}
	names := res.Plan.Upgradable
	if opts.OnPlan != nil {
		opts.OnPlan(res.Plan)
	}

	if !res.Plan.Empty() && opts.Select != nil {
		candidates := make([]Entry, 0, len(names))
		for _, e := range rep.Packages {
			if slices.Contains(names, e.Name) {
				candidates = append(candidates, e)
			}
		}
		picked, err := opts.Select(ctx, candidates)
		if err != nil {
			return res, err
		}
		names = slices.DeleteFunc(slices.Clone(names), func(n string) bool {
			return !slices.Contains(picked, n)
		})
	}

	if len(names) == 0 {
		res.NothingToUpdate = true
		return res, nil
	}

	d.logger.Info("reinstalling", "crates", len(names), "locked", opts.Locked)
	start := d.now()
	err = d.manager.Reinstall(ctx, names, cargo.ReinstallOptions{Locked: opts.Locked})
	observability.Reconcile().OnReinstall(ctx, names, d.now().Sub(start), err)
	res.Reinstalled = names
	return res, err
}
