package taskrunner

import (
	"errors"
	"testing"

	"dht/internal/obs"
)

func TestShouldRetryRetryableKindWithinBudget(t *testing.T) {
	task := &Task{MaxAttempts: 3, Attempts: 1}
	err := obs.New(obs.KindTransientNetwork, "test", "step", errors.New("timeout"))
	if !ShouldRetry(task, err) {
		t.Error("ShouldRetry() should be true for a retryable kind within budget")
	}
}

func TestShouldRetryExhaustedBudget(t *testing.T) {
	task := &Task{MaxAttempts: 2, Attempts: 2}
	err := obs.New(obs.KindTransientNetwork, "test", "step", errors.New("timeout"))
	if ShouldRetry(task, err) {
		t.Error("ShouldRetry() should be false once the attempt budget is exhausted")
	}
}

func TestShouldRetryNonRetryableKind(t *testing.T) {
	task := &Task{MaxAttempts: 5, Attempts: 0}
	err := obs.New(obs.KindHashMismatch, "test", "step", errors.New("mismatch"))
	if ShouldRetry(task, err) {
		t.Error("ShouldRetry() should be false for a non-retryable kind")
	}
}

func TestShouldRetryUnclassifiedError(t *testing.T) {
	task := &Task{MaxAttempts: 5, Attempts: 0}
	if ShouldRetry(task, errors.New("plain error")) {
		t.Error("ShouldRetry() should be false for an error with no obs.Kind")
	}
}

func TestBackoffIncreasesWithAttempt(t *testing.T) {
	first := Backoff(0)
	second := Backoff(3)
	if second <= first {
		t.Errorf("Backoff(3) = %v, want greater than Backoff(0) = %v", second, first)
	}
}
