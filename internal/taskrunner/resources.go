package taskrunner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// ResourceLimits bounds one task's consumption, per §4.K. Only MaxWallClock
// is enforced: the Runner cancels the task once it elapses and records
// ResourceExceeded, which is never retried. MaxMemoryBytes and MaxCPUTime
// are stored with the task but not enforced.
type ResourceLimits struct {
	MaxMemoryBytes int64
	MaxCPUTime     time.Duration
	MaxWallClock   time.Duration
}

// WallClockContext derives a context that cancels itself once limit has
// elapsed on clock, reporting the distinction via timedOut so the caller
// can tell a wall-clock expiry apart from ordinary parent cancellation
// (ctx.Err() alone can't: both surface as context.Canceled here, since the
// limit is enforced by clock rather than context.WithDeadline so that tests
// can advance a fake clock deterministically instead of sleeping).
func WallClockContext(parent context.Context, clock clockwork.Clock, limit time.Duration) (ctx context.Context, cancel context.CancelFunc, timedOut *atomic.Bool) {
	ctx, cancel = context.WithCancel(parent)
	timedOut = &atomic.Bool{}
	if limit <= 0 {
		return ctx, cancel, timedOut
	}

	go func() {
		select {
		case <-clock.After(limit):
			timedOut.Store(true)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel, timedOut
}
