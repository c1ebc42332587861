package cargo

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Executor runs external commands. The default implementation uses os/exec;
// tests substitute a fake.
type Executor interface {
	// Output runs the command and returns its standard output. A non-zero
	// exit status is reported as an error that implements ExitCode() int.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Run runs the command with the executor's standard streams attached and
	// waits for it to finish.
	Run(ctx context.Context, name string, args ...string) error
}

// OSExecutor is the [Executor] backed by os/exec.
type OSExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewOSExecutor returns an executor wired to the process's own standard streams.
func NewOSExecutor() *OSExecutor {
	return &OSExecutor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Output implements [Executor]. Standard error is captured into the
// returned *exec.ExitError.
func (e *OSExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Run implements [Executor].
func (e *OSExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	return cmd.Run()
}
