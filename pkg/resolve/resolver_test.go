package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/integrations"
	"github.com/matzehuels/crateup/pkg/integrations/crates"
	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/observability"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	versions map[string]string
	fail     map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, name string) (inventory.Lookup, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err, ok := f.fail[name]; ok {
		return inventory.Lookup{}, err
	}
	return inventory.Lookup{Latest: f.versions[name]}, nil
}

func registry(name, version string) inventory.Record {
	return inventory.Record{Name: name, Installed: version, Provenance: inventory.FromRegistry("")}
}

func TestResolveIsolatesFailures(t *testing.T) {
	f := &fakeFetcher{
		versions: map[string]string{"alpha": "1.1.0", "gamma": "3.0.0"},
		fail:     map[string]error{"beta": cerrors.New(cerrors.ErrCodeNetwork, "connection reset")},
	}
	records := []inventory.Record{
		registry("alpha", "1.0.0"),
		registry("beta", "2.0.0"),
		registry("gamma", "3.0.0"),
	}

	res, err := New(f, Options{}).Resolve(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	assert.Equal(t, "alpha", res.Records[0].Name)
	assert.True(t, res.Records[0].Resolved)
	assert.True(t, inventory.IsUpgradable(res.Records[0]))

	assert.Equal(t, "beta", res.Records[1].Name)
	assert.False(t, res.Records[1].Resolved)
	assert.False(t, inventory.IsUpgradable(res.Records[1]))

	assert.Equal(t, "gamma", res.Records[2].Name)
	assert.True(t, res.Records[2].Resolved)
	assert.False(t, inventory.IsUpgradable(res.Records[2]))

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "beta", res.Failures[0].Name)
	assert.Equal(t, cerrors.ErrCodeNetwork, res.Failures[0].Code)
	assert.Equal(t, "connection reset", res.Failures[0].Message)

	// Input records are left untouched.
	assert.False(t, records[0].Resolved)
}

func TestResolveSkipsNonRegistry(t *testing.T) {
	f := &fakeFetcher{versions: map[string]string{"foo": "1.2.4"}}
	records := []inventory.Record{
		registry("foo", "1.2.3"),
		{Name: "bar", Installed: "0.9.0", Provenance: inventory.FromVersionControl("https://example.com/bar")},
		{Name: "baz", Installed: "2.0.0", Provenance: inventory.FromLocal("/home/user/baz")},
	}

	res, err := New(f, Options{}).Resolve(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo"}, f.calls)
	for _, r := range res.Records[1:] {
		assert.True(t, r.Resolved, r.Name)
		assert.Equal(t, inventory.Unknown, r.Latest, r.Name)
		assert.False(t, inventory.IsUpgradable(r), r.Name)
	}
	assert.Empty(t, res.Failures)
}

func TestResolveEmpty(t *testing.T) {
	res, err := New(&fakeFetcher{}, Options{}).Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Failures)
}

func TestResolveRunsConcurrently(t *testing.T) {
	const n = 8
	var inflight, peak atomic.Int32
	release := make(chan struct{})

	f := FetcherFunc(func(ctx context.Context, name string) (inventory.Lookup, error) {
		cur := inflight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		if cur == n {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		inflight.Add(-1)
		return inventory.Lookup{Latest: "1.0.0"}, nil
	})

	records := make([]inventory.Record, n)
	for i := range records {
		records[i] = registry(string(rune('a'+i)), "1.0.0")
	}

	_, err := New(f, Options{}).Resolve(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, int32(n), peak.Load())
}

func TestResolveStrictAborts(t *testing.T) {
	f := FetcherFunc(func(ctx context.Context, name string) (inventory.Lookup, error) {
		if name == "bad" {
			return inventory.Lookup{}, cerrors.New(cerrors.ErrCodeNotFound, "no such crate")
		}
		<-ctx.Done()
		return inventory.Lookup{}, ctx.Err()
	})

	records := []inventory.Record{registry("good", "1.0.0"), registry("bad", "1.0.0")}

	_, err := New(f, Options{Strict: true}).Resolve(context.Background(), records)
	require.Error(t, err)
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "lookup bad")
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := FetcherFunc(func(ctx context.Context, name string) (inventory.Lookup, error) {
		return inventory.Lookup{}, ctx.Err()
	})

	_, err := New(f, Options{}).Resolve(ctx, []inventory.Record{registry("foo", "1.0.0")})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingLookupHooks struct {
	observability.NoopLookupHooks
	started, completed atomic.Int32
}

func (h *countingLookupHooks) OnLookupStart(context.Context, string) { h.started.Add(1) }

func (h *countingLookupHooks) OnLookupComplete(context.Context, string, string, time.Duration, error) {
	h.completed.Add(1)
}

func TestResolveLookupHooks(t *testing.T) {
	hooks := &countingLookupHooks{}
	observability.SetLookupHooks(hooks)
	t.Cleanup(observability.Reset)

	f := &fakeFetcher{versions: map[string]string{"a": "1.0.0", "b": "1.0.0"}}
	records := []inventory.Record{
		registry("a", "1.0.0"),
		registry("b", "1.0.0"),
		{Name: "c", Installed: "1.0.0", Provenance: inventory.FromLocal("/src/c")},
	}

	_, err := New(f, Options{}).Resolve(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hooks.started.Load())
	assert.Equal(t, int32(2), hooks.completed.Load())
}

func TestCratesFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/crates/") {
		case "ripgrep":
			w.Write([]byte(`{"crate":{"newest_version":"14.1.0","repository":null,"updated_at":"2024-01-06T15:21:04.106235+00:00"}}`))
		case "broken":
			w.Write([]byte(`{"crate":{}}`))
		case "flaky":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := NewCrates(crates.NewClient(server.URL, integrations.WithHTTPClient(server.Client())))

	l, err := f.Fetch(context.Background(), "ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "14.1.0", l.Latest)
	assert.Empty(t, l.Repository)
	require.NotNil(t, l.UpdatedAt)
	assert.Equal(t, "6 January 2024", inventory.FormatPublished(l.UpdatedAt))

	tests := []struct {
		name string
		code cerrors.Code
	}{
		{"missing", cerrors.ErrCodeNotFound},
		{"broken", cerrors.ErrCodeInvalidResponse},
		{"flaky", cerrors.ErrCodeNetwork},
		{"not/a/crate", cerrors.ErrCodeInvalidPackage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.name)
			require.Error(t, err)
			assert.Equal(t, tt.code, cerrors.GetCode(err))
		})
	}
}
