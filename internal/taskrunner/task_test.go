package taskrunner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"dht/internal/obs"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	dir := t.TempDir()
	q, err := OpenQueue(filepath.Join(dir, "env"))
	if err != nil {
		t.Fatalf("OpenQueue() error = %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func TestSubmitAndRunUntilIdleRunsEverySuccessfulTask(t *testing.T) {
	q := newTestQueue(t)

	var ran []string
	runner := &Runner{
		Queue: q,
		Steps: map[string]StepFunc{
			"noop": func(ctx context.Context, task *Task) error {
				ran = append(ran, task.ID)
				return nil
			},
		},
	}

	id, err := runner.Submit(NewTask("noop", "", "", 0, ResourceLimits{}))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := runner.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	if len(ran) != 1 || ran[0] != id {
		t.Errorf("ran = %v, want [%s]", ran, id)
	}
}

func TestChildTaskWaitsForParentSuccess(t *testing.T) {
	q := newTestQueue(t)

	var order []string
	runner := &Runner{
		Queue: q,
		Steps: map[string]StepFunc{
			"step": func(ctx context.Context, task *Task) error {
				order = append(order, task.Kind+":"+task.Payload)
				return nil
			},
		},
	}

	parent := NewTask("step", "", "parent", 0, ResourceLimits{})
	if _, err := runner.Submit(parent); err != nil {
		t.Fatal(err)
	}
	child := NewTask("step", parent.ID, "child", 0, ResourceLimits{})
	if _, err := runner.Submit(child); err != nil {
		t.Fatal(err)
	}

	if err := runner.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	if len(order) != 2 || order[0] != "step:parent" || order[1] != "step:child" {
		t.Errorf("order = %v, want parent before child", order)
	}
}

func TestRunUntilIdleRetriesTransientFailureThenSucceeds(t *testing.T) {
	q := newTestQueue(t)

	fake := clockwork.NewFakeClock()
	attempts := 0
	runner := &Runner{
		Queue: q,
		Clock: fake,
		Steps: map[string]StepFunc{
			"flaky": func(ctx context.Context, task *Task) error {
				attempts++
				if attempts < 2 {
					return obs.New(obs.KindTransientNetwork, "test", "flaky", errors.New("timeout"))
				}
				return nil
			},
		},
	}

	if _, err := runner.Submit(NewTask("flaky", "", "", 3, ResourceLimits{})); err != nil {
		t.Fatal(err)
	}

	go func() {
		fake.BlockUntil(1)
		fake.Advance(time.Minute)
	}()

	if err := runner.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRunUntilIdleFailsPermanentlyForNonRetryableKind(t *testing.T) {
	q := newTestQueue(t)

	runner := &Runner{
		Queue: q,
		Steps: map[string]StepFunc{
			"bad": func(ctx context.Context, task *Task) error {
				return obs.New(obs.KindHashMismatch, "test", "bad", errors.New("mismatch"))
			},
		},
	}

	task := NewTask("bad", "", "", 5, ResourceLimits{})
	if _, err := runner.Submit(task); err != nil {
		t.Fatal(err)
	}

	if err := runner.RunUntilIdle(context.Background()); err == nil {
		t.Fatal("RunUntilIdle() expected an aggregate error")
	}

	pending, err := q.HasPending()
	if err != nil {
		t.Fatal(err)
	}
	if pending {
		t.Error("a non-retryable failure should leave the queue idle, not pending forever")
	}
}

func TestCancelStopsRunningTask(t *testing.T) {
	q := newTestQueue(t)

	started := make(chan struct{})
	runner := &Runner{
		Queue: q,
		Steps: map[string]StepFunc{
			"slow": func(ctx context.Context, task *Task) error {
				close(started)
				<-ctx.Done()
				return ctx.Err()
			},
		},
	}

	task := NewTask("slow", "", "", 0, ResourceLimits{})
	if _, err := runner.Submit(task); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- runner.RunUntilIdle(context.Background()) }()

	<-started
	if err := runner.Cancel(task.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	<-done
}
