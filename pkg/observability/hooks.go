// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about reconciliation runs, registry lookups, and HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, which keeps the engine
// packages free of any particular logging or metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLookupHooks(&myLookupHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Lookup().OnLookupStart(ctx, name)
//	// ... query the registry ...
//	observability.Lookup().OnLookupComplete(ctx, name, latest, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reconcile Hooks
// =============================================================================

// ReconcileHooks receives events from the reconciliation driver.
type ReconcileHooks interface {
	// OnInventory fires after the installed crates were listed and resolved.
	OnInventory(ctx context.Context, total, upgradable int, duration time.Duration, err error)

	// OnReinstall fires after the bulk reinstall subprocess exits.
	OnReinstall(ctx context.Context, names []string, duration time.Duration, err error)
}

// =============================================================================
// Lookup Hooks
// =============================================================================

// LookupHooks receives events for individual registry lookups.
type LookupHooks interface {
	// OnLookupStart records that a lookup goroutine started.
	OnLookupStart(ctx context.Context, name string)

	// OnLookupComplete records a finished lookup. latest is empty on failure.
	OnLookupComplete(ctx context.Context, name, latest string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReconcileHooks is a no-op implementation of ReconcileHooks.
type NoopReconcileHooks struct{}

func (NoopReconcileHooks) OnInventory(context.Context, int, int, time.Duration, error) {}
func (NoopReconcileHooks) OnReinstall(context.Context, []string, time.Duration, error) {}

// NoopLookupHooks is a no-op implementation of LookupHooks.
type NoopLookupHooks struct{}

func (NoopLookupHooks) OnLookupStart(context.Context, string)                                  {}
func (NoopLookupHooks) OnLookupComplete(context.Context, string, string, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reconcileHooks ReconcileHooks = NoopReconcileHooks{}
	lookupHooks    LookupHooks    = NoopLookupHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetReconcileHooks registers custom reconcile hooks.
// This should be called once at application startup.
func SetReconcileHooks(h ReconcileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reconcileHooks = h
	}
}

// SetLookupHooks registers custom lookup hooks.
// This should be called once at application startup.
func SetLookupHooks(h LookupHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lookupHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Reconcile returns the registered reconcile hooks.
func Reconcile() ReconcileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reconcileHooks
}

// Lookup returns the registered lookup hooks.
func Lookup() LookupHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lookupHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	reconcileHooks = NoopReconcileHooks{}
	lookupHooks = NoopLookupHooks{}
	httpHooks = NoopHTTPHooks{}
}
