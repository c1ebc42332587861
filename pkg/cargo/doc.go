// Package cargo runs the Rust package manager.
//
// [Manager.ListInstalled] captures "cargo install --list" and hands the text
// to the inventory parser. [Manager.Reinstall] performs the one bulk
// "cargo install --force" call of an update run and maps its exit status to
// an [ExitError] so the caller can exit with the same code.
package cargo
