// Package httputil provides HTTP utilities for registry clients.
//
// # Retry
//
// [Policy] and [Retry] re-run an operation for transient failures only:
//
//   - Network errors
//   - 5xx server errors
//
// Callers mark those failures with [Retryable]; everything else (404s,
// malformed JSON) fails on the first attempt. Delays double after each
// failed attempt:
//
//	p := httputil.Policy{Attempts: 3, Delay: time.Second}
//	err := p.Do(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// The zero [Policy] makes exactly one attempt.
package httputil
