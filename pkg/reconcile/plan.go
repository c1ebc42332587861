package reconcile

// Plan partitions a report for update mode. Every entry lands in exactly
// one bucket, in report order.
type Plan struct {
	Upgradable []string `json:"upgradable" yaml:"upgradable"` // Registry crates with a newer version
	Skipped    []string `json:"skipped" yaml:"skipped"`       // Installed from git or a local path
	Ignored    []string `json:"ignored" yaml:"ignored"`       // Excluded by configuration
	Unresolved []string `json:"unresolved" yaml:"unresolved"` // Registry lookup failed
	Current    []string `json:"current" yaml:"current"`       // Up to date, or versions not comparable
}

// NewPlan computes the update plan for r. Names listed in ignore are never
// reinstalled. NewPlan has no side effects.
func NewPlan(r *Report, ignore []string) Plan {
	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	var p Plan
	for _, e := range r.Packages {
		switch {
		case skip[e.Name]:
			p.Ignored = append(p.Ignored, e.Name)
		case !e.Record.Provenance.IsRegistry():
			p.Skipped = append(p.Skipped, e.Name)
		case !e.Resolved:
			p.Unresolved = append(p.Unresolved, e.Name)
		case e.Upgradable:
			p.Upgradable = append(p.Upgradable, e.Name)
		default:
			p.Current = append(p.Current, e.Name)
		}
	}
	return p
}

// Empty reports whether there is nothing to reinstall.
func (p Plan) Empty() bool { return len(p.Upgradable) == 0 }
