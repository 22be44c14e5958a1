//go:build !windows

package validate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	dir := t.TempDir()
	r := ExecRunner{}

	out, err := r.Run(context.Background(), dir, "sh", "-c", "pwd; echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Contains(t, out.Stdout, dir)
	assert.Equal(t, "oops\n", out.Stderr)
}

func TestExecRunner_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, t.TempDir(), "sh", "-c", "sleep 30")
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), t.TempDir(), "lessongen-no-such-tool")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}
