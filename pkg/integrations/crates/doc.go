// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package fetches crate metadata from crates.io (https://crates.io),
// the Rust community's package registry. Only the crate summary endpoint
// is used:
//
//	GET /api/v1/crates/<name>
//
// # Usage
//
//	client := crates.NewClient("", integrations.WithTimeout(5*time.Second))
//
//	crate, err := client.FetchCrate(ctx, "ripgrep")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(crate.Name, crate.NewestVersion, crate.UpdatedAt)
//
// # CrateInfo
//
// [Client.FetchCrate] returns a [CrateInfo] containing:
//
//   - NewestVersion: crate.newest_version, the highest published version
//   - Repository: crate.repository, empty when null
//   - UpdatedAt: crate.updated_at exactly as returned
//
// A response without crate.newest_version is treated as malformed rather
// than as "no newer version".
//
// # User-Agent
//
// crates.io rejects anonymous clients, so every request carries a
// User-Agent of the form "crateup/<version> (<os>, <arch>)".
package crates
