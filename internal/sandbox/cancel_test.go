package sandbox

import (
	"context"
	"strings"
	"testing"
)

func TestRunCapturesOutput(t *testing.T) {
	res, err := Run(context.Background(), t.TempDir(), nil, "echo", "hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(string(res.Output), "hello") {
		t.Errorf("Output = %q, want it to contain %q", res.Output, "hello")
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), t.TempDir(), nil, "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, t.TempDir(), nil, "sleep", "5")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode == 0 {
		t.Errorf("ExitCode = 0, want a non-zero code reflecting termination")
	}
}
