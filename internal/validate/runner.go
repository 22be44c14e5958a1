package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrTimeout is returned by a Runner when the process outlived its context deadline.
var ErrTimeout = errors.New("process timed out")

// Output is what a finished process left behind.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner starts one external process in dir and waits for it.
// A non-zero exit is reported through Output, not as an error.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Output, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.SysProcAttr = newSysProcAttr()
	setupProcessCleanup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() == context.DeadlineExceeded {
		return out, ErrTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return out, nil
}
