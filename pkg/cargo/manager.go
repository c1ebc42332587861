package cargo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/inventory"
)

// DefaultBinary is the package manager executable looked up on PATH.
const DefaultBinary = "cargo"

// ExitError reports that the reinstall subprocess finished with a non-zero
// exit status. The CLI exits with the same code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return fmt.Sprintf("exited with status code: %d", e.Code) }
func (e *ExitError) Unwrap() error { return e.Err }

// ReinstallOptions controls the reinstall invocation.
type ReinstallOptions struct {
	// Locked forwards --locked so crates build against their lock files.
	Locked bool
}

// Manager talks to the cargo binary.
type Manager struct {
	bin  string
	exec Executor
}

// Option configures a [Manager].
type Option func(*Manager)

// WithExecutor replaces the command executor.
func WithExecutor(e Executor) Option {
	return func(m *Manager) { m.exec = e }
}

// New creates a Manager for the given cargo binary. An empty bin selects
// [DefaultBinary].
func New(bin string, opts ...Option) *Manager {
	if bin == "" {
		bin = DefaultBinary
	}
	m := &Manager{bin: bin, exec: NewOSExecutor()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Binary returns the cargo executable this manager runs.
func (m *Manager) Binary() string { return m.bin }

// ListInstalled runs "cargo install --list" and parses its output.
//
// Errors:
//   - MANAGER_NOT_FOUND if the binary cannot be found
//   - MANAGER_FAILED if it exits unsuccessfully
//   - INVALID_OUTPUT if the output is not valid UTF-8
func (m *Manager) ListInstalled(ctx context.Context) (*inventory.Snapshot, error) {
	out, err := m.exec.Output(ctx, m.bin, "install", "--list")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, cerrors.Wrap(cerrors.ErrCodeManagerNotFound, err, "%s not found on PATH", m.bin)
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeManagerFailed, err, "%s install --list%s", m.bin, stderrHint(err))
	}
	return inventory.Parse(out)
}

// ReinstallArgs returns the arguments of the single reinstall invocation.
func ReinstallArgs(names []string, opts ReinstallOptions) []string {
	args := []string{"install", "--force"}
	if opts.Locked {
		args = append(args, "--locked")
	}
	return append(args, names...)
}

// Reinstall runs "cargo install --force [--locked] names..." once, with the
// executor's standard streams attached so cargo's build output is visible.
//
// A non-zero exit is returned as *[ExitError]. A process killed by a signal,
// or one that could not be started, yields a REINSTALL_FAILED error.
func (m *Manager) Reinstall(ctx context.Context, names []string, opts ReinstallOptions) error {
	if len(names) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "no crates to reinstall")
	}

	err := m.exec.Run(ctx, m.bin, ReinstallArgs(names, opts)...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code > 0 {
			return &ExitError{Code: code, Err: err}
		}
		return cerrors.Wrap(cerrors.ErrCodeReinstallFailed, err, "%s install was terminated", m.bin)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return cerrors.Wrap(cerrors.ErrCodeManagerNotFound, err, "%s not found on PATH", m.bin)
	}
	return cerrors.Wrap(cerrors.ErrCodeReinstallFailed, err, "running %s install", m.bin)
}

func stderrHint(err error) string {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return ""
	}
	msg := strings.TrimSpace(string(ee.Stderr))
	if msg == "" {
		return ""
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return ": " + msg
}
