package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// StepFunc executes one regeneration step. item is non-empty only for a
// parallelizable step's per-item invocation (a capability id or dev-tool
// name); it is empty for every sequential step.
type StepFunc func(ctx context.Context, item string) error

// ParallelItemsFunc returns the items a parallelizable step should fan out
// over (e.g. the resolved capability list).
type ParallelItemsFunc func() []string

// Checkpointer persists the last successfully completed step so a failed
// or interrupted run resumes after it rather than from the start (§4.I's
// checkpoint/resume contract).
type Checkpointer interface {
	Save(step StepKind) error
	Load() (StepKind, error)
}

// MaxParallelInstalls bounds how many capability or dev-tool installs run
// concurrently within one parallelizable step.
const MaxParallelInstalls = 4

// Executor runs a Plan's steps in order, checkpointing after each one.
// Grounded directly on the teacher's BuildCmd.Run (build.go): the same
// sequential generate -> resolve -> filter -> build pipeline, with each
// stage's error wrapped by name and the whole run aborting on first
// failure, generalized from "build container images in dependency order"
// to "run the twelve fixed regeneration steps with resume support".
type Executor struct {
	Plan          *Plan
	Steps         map[StepKind]StepFunc
	ParallelItems map[StepKind]ParallelItemsFunc
	Checkpoint    Checkpointer
	Strict        bool
}

// Run executes every step in e.Plan, in order, checkpointing after each
// success. A parallelizable step fans out over its items bounded by
// MaxParallelInstalls; any single item's failure aborts the whole step
// (and the whole run) unless strict-mode escalation (strict.go) decides
// otherwise for that specific failure kind.
func (e *Executor) Run(ctx context.Context) error {
	for _, step := range e.Plan.Steps {
		fn, ok := e.Steps[step]
		if !ok {
			return fmt.Errorf("no implementation registered for step %q", step)
		}

		if err := e.runStep(ctx, step, fn); err != nil {
			return fmt.Errorf("step %q: %w", step, err)
		}

		if e.Checkpoint != nil {
			if err := e.Checkpoint.Save(step); err != nil {
				return fmt.Errorf("checkpointing after step %q: %w", step, err)
			}
		}
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step StepKind, fn StepFunc) error {
	if !IsParallelizable(step) {
		return fn(ctx, "")
	}

	itemsFn, ok := e.ParallelItems[step]
	if !ok {
		return fmt.Errorf("parallelizable step %q has no item source registered", step)
	}
	items := itemsFn()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallelInstalls)

	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
