// Package inventory models the crates installed on this machine.
//
// # Overview
//
// A [Snapshot] is built by [Parse] from the text printed by
// "cargo install --list". Every header line becomes a [Record] whose
// [Provenance] says how the crate was installed:
//
//   - [Registry]: from crates.io (no source in the header line)
//   - [VersionControl]: from a git URL
//   - [Local]: from a filesystem path
//
// # Resolution
//
// Records start unresolved. The resolver produces resolved copies with
// [Record.WithLookup] (registry crates) or [Record.WithoutLookup] (everything
// else); records are never modified in place.
//
// # Upgradability
//
// [IsUpgradable] is the single upgrade rule: registry crates whose newest
// published version is strictly greater than the installed one under semantic
// versioning. Anything that fails to parse is simply not upgradable.
package inventory
