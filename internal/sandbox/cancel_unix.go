//go:build !windows

package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Run executes name/args with env and dir, in a new process group, and
// returns its combined output. If ctx is cancelled before the process
// exits, the entire process group is sent SIGTERM; if it has not exited
// within GraceWindow, SIGKILL follows. Grounded on the teacher's
// exec.Command(...).CombinedOutput() invocation style (start.go, shell.go),
// generalized from "run docker/podman and capture output" to "run any
// sandboxed build/install step with cancellable process-group cleanup".
func Run(ctx context.Context, dir string, env []string, name string, args ...string) (*Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return resultFrom(buf.Bytes(), cmd, err)
	case <-ctx.Done():
		terminateGroup(cmd.Process.Pid)
		select {
		case err := <-done:
			return resultFrom(buf.Bytes(), cmd, err)
		case <-time.After(GraceWindow):
			killGroup(cmd.Process.Pid)
			err := <-done
			return resultFrom(buf.Bytes(), cmd, err)
		}
	}
}

func terminateGroup(pid int) {
	unix.Kill(-pid, syscall.SIGTERM)
}

func killGroup(pid int) {
	unix.Kill(-pid, syscall.SIGKILL)
}
