package taskrunner

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"dht/internal/obs"
)

// ShouldRetry reports whether t should be re-queued for err, per §4.K: a
// task's retry budget is consumed only for retryable kinds (transient
// network, package-index unavailability), never for anything else, and
// never once the budget is exhausted.
func ShouldRetry(t *Task, err error) bool {
	if t.Attempts >= t.MaxAttempts {
		return false
	}
	kind, ok := obs.KindOf(err)
	if !ok {
		return false
	}
	return kind.Retryable()
}

// Backoff computes the delay before attempt's retry: exponential with
// jitter, starting at 500ms and capped at 30s. Every kind shares this one
// policy, and it is rebuilt on each call.
func Backoff(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.Reset()

	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
