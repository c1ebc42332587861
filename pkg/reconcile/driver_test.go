package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/crateup/pkg/cargo"
	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/observability"
	"github.com/matzehuels/crateup/pkg/resolve"
)

type fakeManager struct {
	listing   string
	listErr   error
	reinstErr error

	reinstalls [][]string
	locked     []bool
}

func (m *fakeManager) ListInstalled(context.Context) (*inventory.Snapshot, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return inventory.Parse([]byte(m.listing))
}

func (m *fakeManager) Reinstall(_ context.Context, names []string, opts cargo.ReinstallOptions) error {
	m.reinstalls = append(m.reinstalls, names)
	m.locked = append(m.locked, opts.Locked)
	return m.reinstErr
}

func fetcher(latest map[string]string, fail ...string) resolve.Fetcher {
	return resolve.FetcherFunc(func(_ context.Context, name string) (inventory.Lookup, error) {
		for _, f := range fail {
			if f == name {
				return inventory.Lookup{}, cerrors.New(cerrors.ErrCodeNetwork, "timeout")
			}
		}
		return inventory.Lookup{Latest: latest[name]}, nil
	})
}

func newDriver(m Manager, f resolve.Fetcher, ignore ...string) *Driver {
	d := NewDriver(m, resolve.New(f, resolve.Options{}), Options{Ignore: ignore})
	d.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

const listing = `foo v1.2.3:
    foo
bar v0.9.0 (https://example.com/bar):
    bar
baz v2.0.0 (/home/user/baz):
    baz
qux v0.1.0:
    qux
`

func TestInventory(t *testing.T) {
	m := &fakeManager{listing: listing}
	d := newDriver(m, fetcher(map[string]string{"foo": "1.3.0", "qux": "0.1.0"}))

	rep, err := d.Inventory(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), rep.GeneratedAt)

	var names []string
	for _, e := range rep.Packages {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"bar", "baz", "foo", "qux"}, names)

	byName := map[string]Entry{}
	for _, e := range rep.Packages {
		byName[e.Name] = e
	}
	assert.True(t, byName["foo"].Upgradable)
	assert.False(t, byName["qux"].Upgradable)
	assert.False(t, byName["bar"].Upgradable)
	assert.Equal(t, inventory.VersionControl, byName["bar"].Source)
	assert.Equal(t, "https://example.com/bar", byName["bar"].Repository)
	assert.Equal(t, inventory.Unknown, byName["baz"].Latest)

	assert.Empty(t, m.reinstalls)
}

func TestInventoryPartialFailure(t *testing.T) {
	m := &fakeManager{listing: "alpha v1.0.0:\nbeta v1.0.0:\ngamma v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"alpha": "2.0.0", "gamma": "1.0.0"}, "beta"))

	rep, err := d.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Packages, 3)

	assert.True(t, rep.Packages[0].Upgradable)
	assert.False(t, rep.Packages[1].Upgradable)
	assert.False(t, rep.Packages[1].Resolved)
	assert.Equal(t, inventory.Unknown, rep.Packages[1].Latest)
	assert.False(t, rep.Packages[2].Upgradable)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "beta", rep.Failures[0].Name)
}

func TestInventoryListFailure(t *testing.T) {
	m := &fakeManager{listErr: cerrors.New(cerrors.ErrCodeManagerNotFound, "cargo not found on PATH")}
	d := newDriver(m, fetcher(nil))

	_, err := d.Inventory(context.Background())
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeManagerNotFound))
}

func TestUpdateNothingToUpdate(t *testing.T) {
	m := &fakeManager{listing: "foo v1.2.3:\nbar v0.9.0 (https://example.com/bar):\n"}
	d := newDriver(m, fetcher(map[string]string{"foo": "1.2.3"}))

	res, err := d.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, res.NothingToUpdate)
	assert.Empty(t, res.Reinstalled)
	assert.Equal(t, []string{"bar"}, res.Plan.Skipped)
	assert.Empty(t, m.reinstalls)
}

func TestUpdateReinstallsOnce(t *testing.T) {
	m := &fakeManager{listing: listing + "zed v0.5.0:\nold v3.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{
		"foo": "1.3.0",
		"qux": "0.2.0",
		"zed": "0.5.0",
		"old": "2.9.9",
	}))

	res, err := d.Update(context.Background(), UpdateOptions{Locked: true})
	require.NoError(t, err)
	assert.False(t, res.NothingToUpdate)

	require.Len(t, m.reinstalls, 1)
	assert.ElementsMatch(t, []string{"foo", "qux"}, m.reinstalls[0])
	assert.Equal(t, []bool{true}, m.locked)
	assert.Equal(t, m.reinstalls[0], res.Reinstalled)
	assert.ElementsMatch(t, []string{"bar", "baz"}, res.Plan.Skipped)
	assert.ElementsMatch(t, []string{"old", "zed"}, res.Plan.Current)
}

func TestUpdateOnPlan(t *testing.T) {
	m := &fakeManager{listing: "foo v1.0.0:\nbar v0.9.0 (https://example.com/bar):\n"}
	d := newDriver(m, fetcher(map[string]string{"foo": "2.0.0"}))

	var seen []Plan
	_, err := d.Update(context.Background(), UpdateOptions{OnPlan: func(p Plan) { seen = append(seen, p) }})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, []string{"foo"}, seen[0].Upgradable)
	assert.Equal(t, []string{"bar"}, seen[0].Skipped)
}

func TestUpdateIgnore(t *testing.T) {
	m := &fakeManager{listing: "foo v1.0.0:\nqux v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"foo": "2.0.0", "qux": "2.0.0"}), "qux")

	res, err := d.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"qux"}, res.Plan.Ignored)
	require.Len(t, m.reinstalls, 1)
	assert.Equal(t, []string{"foo"}, m.reinstalls[0])
}

func TestUpdateSelect(t *testing.T) {
	m := &fakeManager{listing: "a v1.0.0:\nb v1.0.0:\nc v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"a": "2.0.0", "b": "2.0.0", "c": "1.0.0"}))

	var offered []string
	sel := func(_ context.Context, candidates []Entry) ([]string, error) {
		for _, c := range candidates {
			offered = append(offered, c.Name)
		}
		return []string{"b", "c", "unknown"}, nil
	}

	res, err := d.Update(context.Background(), UpdateOptions{Select: sel})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, offered)
	require.Len(t, m.reinstalls, 1)
	assert.Equal(t, []string{"b"}, m.reinstalls[0])
	assert.Equal(t, []string{"a", "b"}, res.Plan.Upgradable)
}

func TestUpdateSelectNone(t *testing.T) {
	m := &fakeManager{listing: "a v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"a": "2.0.0"}))

	sel := func(context.Context, []Entry) ([]string, error) { return nil, nil }
	res, err := d.Update(context.Background(), UpdateOptions{Select: sel})
	require.NoError(t, err)
	assert.True(t, res.NothingToUpdate)
	assert.Empty(t, m.reinstalls)
}

func TestUpdateSelectNotAskedWhenPlanEmpty(t *testing.T) {
	m := &fakeManager{listing: "a v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"a": "1.0.0"}))

	asked := false
	sel := func(context.Context, []Entry) ([]string, error) {
		asked = true
		return []string{"a"}, nil
	}
	res, err := d.Update(context.Background(), UpdateOptions{Select: sel})
	require.NoError(t, err)
	assert.True(t, res.Plan.Empty())
	assert.False(t, asked)
	assert.True(t, res.NothingToUpdate)
	assert.Empty(t, m.reinstalls)
}

func TestUpdateSelectError(t *testing.T) {
	m := &fakeManager{listing: "a v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"a": "2.0.0"}))

	aborted := errors.New("aborted")
	sel := func(context.Context, []Entry) ([]string, error) { return nil, aborted }
	res, err := d.Update(context.Background(), UpdateOptions{Select: sel})
	assert.ErrorIs(t, err, aborted)
	require.NotNil(t, res)
	assert.Empty(t, m.reinstalls)
}

func TestUpdateReinstallFailure(t *testing.T) {
	m := &fakeManager{
		listing:   "a v1.0.0:\n",
		reinstErr: &cargo.ExitError{Code: 101},
	}
	d := newDriver(m, fetcher(map[string]string{"a": "2.0.0"}))

	res, err := d.Update(context.Background(), UpdateOptions{})
	var exitErr *cargo.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 101, exitErr.Code)
	require.NotNil(t, res)
	assert.Equal(t, []string{"a"}, res.Reinstalled)
}

type recordingReconcileHooks struct {
	observability.NoopReconcileHooks
	total, upgradable int
	reinstalled       []string
}

func (h *recordingReconcileHooks) OnInventory(_ context.Context, total, upgradable int, _ time.Duration, _ error) {
	h.total, h.upgradable = total, upgradable
}

func (h *recordingReconcileHooks) OnReinstall(_ context.Context, names []string, _ time.Duration, _ error) {
	h.reinstalled = names
}

func TestReconcileHooks(t *testing.T) {
	hooks := &recordingReconcileHooks{}
	observability.SetReconcileHooks(hooks)
	t.Cleanup(observability.Reset)

	m := &fakeManager{listing: "a v1.0.0:\nb v1.0.0:\n"}
	d := newDriver(m, fetcher(map[string]string{"a": "2.0.0", "b": "1.0.0"}))

	_, err := d.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, hooks.total)
	assert.Equal(t, 1, hooks.upgradable)
	assert.Equal(t, []string{"a"}, hooks.reinstalled)
}
