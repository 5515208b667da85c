package taskrunner

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestWallClockContextCancelsAfterLimit(t *testing.T) {
	fake := clockwork.NewFakeClock()
	ctx, cancel, timedOut := WallClockContext(context.Background(), fake, time.Minute)
	defer cancel()

	fake.BlockUntil(1)
	fake.Advance(time.Minute)

	<-ctx.Done()
	if !timedOut.Load() {
		t.Error("timedOut should be true after the wall-clock limit elapses")
	}
}

func TestWallClockContextNoLimitNeverFires(t *testing.T) {
	fake := clockwork.NewFakeClock()
	ctx, cancel, timedOut := WallClockContext(context.Background(), fake, 0)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done with no wall-clock limit")
	case <-time.After(10 * time.Millisecond):
	}
	if timedOut.Load() {
		t.Error("timedOut should remain false with no limit")
	}
}

func TestWallClockContextParentCancelDoesNotMarkTimedOut(t *testing.T) {
	fake := clockwork.NewFakeClock()
	parent, parentCancel := context.WithCancel(context.Background())
	ctx, cancel, timedOut := WallClockContext(parent, fake, time.Hour)
	defer cancel()

	parentCancel()
	<-ctx.Done()
	if timedOut.Load() {
		t.Error("parent cancellation should not be reported as a wall-clock timeout")
	}
}
