package inventory

import (
	"fmt"
	"time"
)

// Unknown is the sentinel shown for values that are not known or do not apply,
// such as the latest version of a crate installed from git.
const Unknown = "-"

// Kind identifies where an installed crate originally came from.
type Kind int

const (
	// Registry crates were installed from the crates registry.
	Registry Kind = iota
	// VersionControl crates were installed from a git URL.
	VersionControl
	// Local crates were installed from a filesystem path.
	Local
)

// String returns the display label for the kind.
func (k Kind) String() string {
	switch k {
	case Registry:
		return "crates.io"
	case VersionControl:
		return "git"
	case Local:
		return "local"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler so reports carry the label.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Provenance is the install source of a crate: a kind plus the string it
// carries. For Registry it is the repository hint reported by the registry
// (empty until resolution), for VersionControl the URL, for Local the path.
//
// The zero value is a Registry provenance with an empty hint.
type Provenance struct {
	kind   Kind
	source string
}

// FromRegistry returns a Registry provenance carrying a repository hint.
func FromRegistry(repository string) Provenance {
	return Provenance{kind: Registry, source: repository}
}

// FromVersionControl returns a VersionControl provenance for url.
func FromVersionControl(url string) Provenance {
	return Provenance{kind: VersionControl, source: url}
}

// FromLocal returns a Local provenance for path.
func FromLocal(path string) Provenance {
	return Provenance{kind: Local, source: path}
}

// Kind returns the provenance tag.
func (p Provenance) Kind() Kind { return p.kind }

// Source returns the carried string: repository hint, URL, or path.
func (p Provenance) Source() string { return p.source }

// IsRegistry reports whether the crate came from the registry.
func (p Provenance) IsRegistry() bool { return p.kind == Registry }

// String returns the display label of the kind.
func (p Provenance) String() string { return p.kind.String() }

// withSource returns a copy with a new carried string and the same kind.
func (p Provenance) withSource(s string) Provenance {
	return Provenance{kind: p.kind, source: s}
}

// Record is one locally installed crate.
//
// Records are values. Resolution never mutates a record in place; it returns a
// new one through [Record.WithLookup] or [Record.WithoutLookup].
type Record struct {
	Name       string     // Crate name, never empty
	Installed  string     // Installed version without the "v" prefix; may be malformed
	Provenance Provenance // Install source, fixed at parse time
	Latest     string     // Newest published version; empty until resolved, Unknown for non-registry crates
	Published  string     // Last publish date ("2 January 2006"), or Unknown
	Resolved   bool       // Whether resolution has run for this record
}

// Lookup is the registry data used to resolve a Registry record.
type Lookup struct {
	Latest     string     // newest_version, required
	Repository string     // repository URL; empty when the registry has none
	UpdatedAt  *time.Time // last publish time; nil when absent or unparseable
}

// WithLookup returns a resolved copy of r filled in from l. The repository
// hint becomes Unknown when the registry reports none.
func (r Record) WithLookup(l Lookup) Record {
	repo := l.Repository
	if repo == "" {
		repo = Unknown
	}
	r.Latest = l.Latest
	r.Published = FormatPublished(l.UpdatedAt)
	r.Provenance = r.Provenance.withSource(repo)
	r.Resolved = true
	return r
}

// WithoutLookup returns a resolved copy of r carrying sentinel values. It is
// used for crates that are not looked up in the registry.
func (r Record) WithoutLookup() Record {
	r.Latest = Unknown
	r.Published = Unknown
	r.Resolved = true
	return r
}

// Repository returns the repository column for display: the registry's hint
// for Registry crates, the URL or path otherwise.
func (r Record) Repository() string {
	if r.Provenance.Source() == "" {
		return Unknown
	}
	return r.Provenance.Source()
}

// FormatPublished renders t as "<day> <Month> <year>", or Unknown for nil.
func FormatPublished(t *time.Time) string {
	if t == nil {
		return Unknown
	}
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month(), t.Year())
}

// ParseTimestamp parses an ISO-8601 timestamp as published by the registry.
// It returns nil when s is empty or not a recognised form.
func ParseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
