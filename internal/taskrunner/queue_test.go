package taskrunner

import "testing"

func TestQueueEnqueueAndDequeue(t *testing.T) {
	q := newTestQueue(t)

	task := NewTask("probe", "", "payload", 1, ResourceLimits{})
	if err := q.Enqueue(task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	got, err := q.DequeueNext()
	if err != nil {
		t.Fatalf("DequeueNext() error = %v", err)
	}
	if got == nil || got.ID != task.ID {
		t.Fatalf("DequeueNext() = %v, want task %s", got, task.ID)
	}
}

func TestQueueDequeueNextEmpty(t *testing.T) {
	q := newTestQueue(t)

	got, err := q.DequeueNext()
	if err != nil {
		t.Fatalf("DequeueNext() error = %v", err)
	}
	if got != nil {
		t.Fatalf("DequeueNext() = %v, want nil on an empty queue", got)
	}
}

func TestQueueCheckpointRoundTrip(t *testing.T) {
	q := newTestQueue(t)

	task := NewTask("probe", "", "", 0, ResourceLimits{})
	if err := q.Enqueue(task); err != nil {
		t.Fatal(err)
	}
	if err := q.SaveCheckpoint(task.ID, "ensure_interpreter"); err != nil {
		t.Fatalf("SaveCheckpoint() error = %v", err)
	}

	checkpoint, err := q.LoadCheckpoint(task.ID)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error = %v", err)
	}
	if checkpoint != "ensure_interpreter" {
		t.Errorf("LoadCheckpoint() = %q, want %q", checkpoint, "ensure_interpreter")
	}
}

func TestQueueHasPendingReflectsStatus(t *testing.T) {
	q := newTestQueue(t)

	pending, err := q.HasPending()
	if err != nil {
		t.Fatal(err)
	}
	if pending {
		t.Error("HasPending() should be false on an empty queue")
	}

	task := NewTask("probe", "", "", 0, ResourceLimits{})
	if err := q.Enqueue(task); err != nil {
		t.Fatal(err)
	}
	pending, err = q.HasPending()
	if err != nil {
		t.Fatal(err)
	}
	if !pending {
		t.Error("HasPending() should be true after enqueueing a task")
	}

	if err := q.SetStatus(task.ID, StatusSucceeded, ""); err != nil {
		t.Fatal(err)
	}
	pending, err = q.HasPending()
	if err != nil {
		t.Fatal(err)
	}
	if pending {
		t.Error("HasPending() should be false once the only task has succeeded")
	}
}
