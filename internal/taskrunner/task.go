package taskrunner

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"dht/internal/obs"
)

// Status is a Task's position in its state machine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is one unit of queued work. Payload is opaque to the runner; it is
// interpreted by the StepFunc registered for Kind. Grounded on the teacher's
// MergeStep plan-then-execute shape (merge.go), generalized from "merge one
// layer" to a full durable state machine with retries and resource limits.
type Task struct {
	ID          string
	ParentID    string
	Kind        string
	Status      Status
	Payload     string
	Attempts    int
	MaxAttempts int
	Checkpoint  string
	Limits      ResourceLimits
}

// NewTask constructs a Task with a fresh id, ready to Submit.
func NewTask(kind, parentID, payload string, maxAttempts int, limits ResourceLimits) *Task {
	return &Task{
		ID:          uuid.NewString(),
		ParentID:    parentID,
		Kind:        kind,
		Status:      StatusPending,
		Payload:     payload,
		MaxAttempts: maxAttempts,
		Limits:      limits,
	}
}

// StepFunc executes one task's work. A nil error means success; StepFunc
// should return an *obs.Error so the runner can classify retryability by
// kind rather than guessing from the error string.
type StepFunc func(ctx context.Context, t *Task) error

// Runner drains a Queue with a single worker, per §4.K's scheduling model:
// tasks are cooperatively executed in-process, though the subprocesses they
// spawn may run with platform-native parallelism.
type Runner struct {
	Queue *Queue
	Steps map[string]StepFunc
	Clock clockwork.Clock // nil uses the real clock

	mu        sync.Mutex
	cancelers map[string]context.CancelFunc
}

// Submit enqueues t and returns its id immediately; the work itself runs
// later, during RunUntilIdle.
func (r *Runner) Submit(t *Task) (string, error) {
	if err := r.Queue.Enqueue(t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// RunUntilIdle executes tasks until the queue has none left Pending or
// Running, returning the aggregate worst exit classification across every
// task it ran (§6's "aggregate worst code" contract), expressed as the
// first fatal error encountered; retryable failures that exhaust their
// budget still count as fatal for this purpose.
func (r *Runner) RunUntilIdle(ctx context.Context) error {
	var worst error
	for {
		pending, err := r.Queue.HasPending()
		if err != nil {
			return err
		}
		if !pending {
			return worst
		}

		t, err := r.Queue.DequeueNext()
		if err != nil {
			return err
		}
		if t == nil {
			// Something is Pending but blocked on an unfinished parent;
			// nothing else to do this pass.
			return worst
		}

		if err := r.runOne(ctx, t); err != nil && worst == nil {
			worst = err
		}
	}
}

func (r *Runner) runOne(ctx context.Context, t *Task) error {
	fn, ok := r.Steps[t.Kind]
	if !ok {
		err := fmt.Errorf("no step registered for task kind %q", t.Kind)
		if setErr := r.Queue.SetStatus(t.ID, StatusFailed, err.Error()); setErr != nil {
			return setErr
		}
		return err
	}

	if err := r.Queue.SetStatus(t.ID, StatusRunning, ""); err != nil {
		return err
	}

	runCtx, cancel, timedOut := WallClockContext(ctx, r.clock(), t.Limits.MaxWallClock)
	r.registerCancel(t.ID, cancel)
	defer r.unregisterCancel(t.ID)
	defer cancel()

	err := fn(runCtx, t)
	if err == nil {
		return r.Queue.SetStatus(t.ID, StatusSucceeded, "")
	}

	if timedOut.Load() {
		err = obs.New(obs.KindResourceExceeded, "taskrunner", t.Kind, fmt.Errorf("wall-clock limit %s exceeded", t.Limits.MaxWallClock))
	} else if ctx.Err() == nil && runCtx.Err() != nil {
		// Stopped through Cancel: keep the task Cancelled, not Failed.
		if setErr := r.Queue.SetStatus(t.ID, StatusCancelled, "cancelled by request"); setErr != nil {
			return setErr
		}
		return err
	}

	if err := r.Queue.IncrementAttempts(t.ID); err != nil {
		return err
	}
	t.Attempts++

	if ShouldRetry(t, err) {
		r.clock().Sleep(Backoff(t.Attempts))
		return r.Queue.SetStatus(t.ID, StatusPending, err.Error())
	}
	if setErr := r.Queue.SetStatus(t.ID, StatusFailed, err.Error()); setErr != nil {
		return setErr
	}
	return err
}

// Cancel signals task id's running subprocess tree and marks it Cancelled.
// Grounded on the teacher's start.go/shell.go subprocess-invocation style,
// generalized through internal/sandbox's grace-window termination.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	cancel, ok := r.cancelers[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return r.Queue.SetStatus(id, StatusCancelled, "cancelled by request")
}

func (r *Runner) registerCancel(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelers == nil {
		r.cancelers = map[string]context.CancelFunc{}
	}
	r.cancelers[id] = cancel
}

func (r *Runner) unregisterCancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancelers, id)
}

func (r *Runner) clock() clockwork.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clockwork.NewRealClock()
}
