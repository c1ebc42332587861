package reconcile

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/resolve"
)

// Entry is one installed crate in a [Report].
type Entry struct {
	Name       string         `json:"name" yaml:"name"`
	Installed  string         `json:"installed" yaml:"installed"`
	Latest     string         `json:"latest" yaml:"latest"`
	Source     inventory.Kind `json:"source" yaml:"source"`
	Repository string         `json:"repository" yaml:"repository"`
	Published  string         `json:"published" yaml:"published"`
	Resolved   bool           `json:"resolved" yaml:"resolved"`
	Upgradable bool           `json:"upgradable" yaml:"upgradable"`

	Record inventory.Record `json:"-" yaml:"-"`
}

func newEntry(r inventory.Record) Entry {
	latest, published := r.Latest, r.Published
	if !r.Resolved {
		latest, published = inventory.Unknown, inventory.Unknown
	}
	return Entry{
		Name:       r.Name,
		Installed:  r.Installed,
		Latest:     latest,
		Source:     r.Provenance.Kind(),
		Repository: r.Repository(),
		Published:  published,
		Resolved:   r.Resolved,
		Upgradable: inventory.IsUpgradable(r),
		Record:     r,
	}
}

// Report is the result of one reconciliation run in list mode.
type Report struct {
	RunID       string                 `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
	Packages    []Entry                `json:"packages" yaml:"packages"`
	Failures    []resolve.Failure      `json:"failures,omitempty" yaml:"failures,omitempty"`
	Diagnostics []inventory.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewReport builds a report from resolved records. Entries are sorted by name.
func NewReport(runID string, at time.Time, records []inventory.Record) *Report {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, newEntry(r))
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })
	return &Report{RunID: runID, GeneratedAt: at, Packages: entries}
}

// Upgradable returns the entries that have a newer version on the registry.
func (r *Report) Upgradable() []Entry {
	var out []Entry
	for _, e := range r.Packages {
		if e.Upgradable {
			out = append(out, e)
		}
	}
	return out
}

// Filter returns a shallow copy of the report holding only the upgradable
// entries. Failures and diagnostics are kept.
func (r *Report) Filter() *Report {
	cp := *r
	cp.Packages = r.Upgradable()
	if cp.Packages == nil {
		cp.Packages = []Entry{}
	}
	return &cp
}
