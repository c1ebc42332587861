package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopReconcileHooks{}
	r.OnInventory(ctx, 12, 3, time.Second, nil)
	r.OnReinstall(ctx, []string{"ripgrep", "bat"}, time.Minute, errors.New("exit status 101"))

	l := NoopLookupHooks{}
	l.OnLookupStart(ctx, "ripgrep")
	l.OnLookupComplete(ctx, "ripgrep", "14.1.0", time.Second, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "crates.io", "/api/v1/crates/ripgrep")
	h.OnResponse(ctx, "GET", "crates.io", "/api/v1/crates/ripgrep", 200, time.Second)
	h.OnError(ctx, "GET", "crates.io", "/api/v1/crates/ripgrep", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Reconcile().(NoopReconcileHooks); !ok {
		t.Error("Reconcile() should return NoopReconcileHooks by default")
	}
	if _, ok := Lookup().(NoopLookupHooks); !ok {
		t.Error("Lookup() should return NoopLookupHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customReconcile := &testReconcileHooks{}
	SetReconcileHooks(customReconcile)
	if Reconcile() != customReconcile {
		t.Error("SetReconcileHooks should set custom hooks")
	}

	customLookup := &testLookupHooks{}
	SetLookupHooks(customLookup)
	if Lookup() != customLookup {
		t.Error("SetLookupHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Lookup().(NoopLookupHooks); !ok {
		t.Error("Reset() should restore NoopLookupHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLookupHooks{}
	SetLookupHooks(custom)
	SetLookupHooks(nil)

	if Lookup() != custom {
		t.Error("SetLookupHooks(nil) should be ignored")
	}

	Reset()
}

type testReconcileHooks struct{ NoopReconcileHooks }
type testLookupHooks struct{ NoopLookupHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
