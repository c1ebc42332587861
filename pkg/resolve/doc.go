// Package resolve looks up the newest published version of installed crates.
//
// [Resolver.Resolve] starts one goroutine per registry record and joins them
// with an errgroup. Records installed from git or a local path never reach
// the network; they receive the "-" sentinel for their latest version.
//
// A failed lookup is isolated: the record stays unresolved (and therefore
// not upgradable), the failure is logged at warn level and returned in
// [Result.Failures]. With [Options.Strict] the first failure aborts the whole
// batch instead.
package resolve
