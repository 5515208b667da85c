//go:build windows

package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Run executes name/args with env and dir and returns its combined output.
// Windows has no POSIX process-group signal story, so cancellation here is
// a direct process kill rather than the graceful-then-forced two-step the
// Unix build uses; §5 only requires descendants not to outlive the engine,
// not a specific signal sequence.
func Run(ctx context.Context, dir string, env []string, name string, args ...string) (*Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = env

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
		cmd.Process.Kill()
		err := <-done
		return resultFrom(buf.Bytes(), cmd, err)
	}
}
