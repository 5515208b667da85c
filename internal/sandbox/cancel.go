// Package sandbox runs a subprocess in its own process group so a
// cancellation can reach every descendant it spawned, not just the direct
// child.
package sandbox

import (
	"os/exec"
	"time"
)

// GraceWindow is how long a cancelled process group is given to exit after
// the initial termination signal before sandbox.Run escalates to a forced
// kill (§5's ambient shutdown contract).
const GraceWindow = 5 * time.Second

// Result is the outcome of a sandboxed command.
type Result struct {
	Output   []byte
	ExitCode int
}

func resultFrom(output []byte, cmd *exec.Cmd, waitErr error) (*Result, error) {
	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return &Result{Output: output}, waitErr
		}
	}
	return &Result{Output: output, ExitCode: exitCode}, nil
}
