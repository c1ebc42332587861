// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// Registry clients live in subpackages:
//
//   - [crates]: Rust crates.io
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing every registry client needs:
//
//   - default headers (crates.io rejects requests without a User-Agent)
//   - status mapping to [ErrNotFound] and [ErrNetwork]
//   - JSON decoding, with failures reported as [ErrDecode]
//   - retries for transient failures via [httputil.Policy]
//   - request events for [observability.HTTPHooks]
//
// Responses are never cached; every run sees the registry's current state.
//
// # Adding a New Registry
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Implement a Client embedding [*Client]
//  4. Adapt it to the resolver's Fetcher interface
//
// [crates]: github.com/matzehuels/crateup/pkg/integrations/crates
// [httputil.Policy]: github.com/matzehuels/crateup/pkg/httputil.Policy
// [observability.HTTPHooks]: github.com/matzehuels/crateup/pkg/observability.HTTPHooks
package integrations
