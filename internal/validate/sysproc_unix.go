//go:build !windows

package validate

import (
	"os/exec"
	"syscall"
	"time"
)

// newSysProcAttr puts the tool in its own session so a timeout can take down
// anything it spawned.
func newSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid: true,
	}
}

// setupProcessCleanup configures cmd to kill the entire process group on
// context cancellation, so a hung pytest worker cannot outlive its deadline.
func setupProcessCleanup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}
	cmd.WaitDelay = 5 * time.Second
}
