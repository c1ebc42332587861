// Package reconcile compares installed crates with the registry.
//
// # Modes
//
// List mode, [Driver.Inventory], lists what cargo has installed, resolves
// the newest version of every crates.io crate and returns a name-sorted
// [Report]. Nothing on the machine changes.
//
// Update mode, [Driver.Update], builds the same report, partitions it with
// [NewPlan] and reinstalls the upgradable crates with a single
// "cargo install --force" call. An empty plan is a successful no-op.
//
// # Upgrade Rule
//
// Only crates installed from crates.io are ever reinstalled. Crates built
// from git or a local path appear in [Plan.Skipped]; crates whose lookup
// failed appear in [Plan.Unresolved]; neither blocks the rest of the run.
package reconcile
