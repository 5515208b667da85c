package engine

import (
	"context"
	"errors"
	"testing"

	"dht/internal/obs"
)

func TestExecutorRunsStepsInOrder(t *testing.T) {
	plan, err := NewPlan("")
	if err != nil {
		t.Fatal(err)
	}

	var seen []StepKind
	steps := map[StepKind]StepFunc{}
	for _, s := range plan.Steps {
		s := s
		steps[s] = func(ctx context.Context, item string) error {
			seen = append(seen, s)
			return nil
		}
	}

	exec := &Executor{Plan: plan, Steps: steps}
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(seen) != len(plan.Steps) {
		t.Fatalf("ran %d steps, want %d", len(seen), len(plan.Steps))
	}
	for i, s := range plan.Steps {
		if seen[i] != s {
			t.Errorf("step[%d] = %q, want %q", i, seen[i], s)
		}
	}
}

func TestExecutorAbortsOnFirstError(t *testing.T) {
	plan, err := NewPlan("")
	if err != nil {
		t.Fatal(err)
	}

	ran := map[StepKind]bool{}
	steps := map[StepKind]StepFunc{}
	for _, s := range plan.Steps {
		s := s
		steps[s] = func(ctx context.Context, item string) error {
			ran[s] = true
			if s == StepIntrospectProject {
				return errors.New("boom")
			}
			return nil
		}
	}

	exec := &Executor{Plan: plan, Steps: steps}
	if err := exec.Run(context.Background()); err == nil {
		t.Fatal("Run() expected an error")
	}
	if ran[StepResolveCapabilities] {
		t.Error("steps after the failing step should not have run")
	}
}

func TestExecutorParallelStepFansOutOverItems(t *testing.T) {
	plan := &Plan{Steps: []StepKind{StepInstallCapabilities}}

	var seen []string
	steps := map[StepKind]StepFunc{
		StepInstallCapabilities: func(ctx context.Context, item string) error {
			seen = append(seen, item)
			return nil
		},
	}
	parallelItems := map[StepKind]ParallelItemsFunc{
		StepInstallCapabilities: func() []string { return []string{"a", "b", "c"} },
	}

	exec := &Executor{Plan: plan, Steps: steps, ParallelItems: parallelItems}
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("ran %d items, want 3", len(seen))
	}
}

func TestDecideStrictNeverFallsBack(t *testing.T) {
	err := obs.New(obs.KindTransientNetwork, "engine", "install", errors.New("timeout"))
	d := Decide(true, err)
	if d.Proceed {
		t.Error("Decide(strict=true) should never proceed")
	}
}

func TestDecideNonStrictFallsBackForFallbackableKind(t *testing.T) {
	err := obs.New(obs.KindPackageManagerMissing, "engine", "install", errors.New("no apt"))
	d := Decide(false, err)
	if !d.Proceed {
		t.Errorf("Decide(strict=false) should proceed for a fallbackable kind, got reason %q", d.Reason)
	}
}

func TestDecideNonStrictAbortsForUnrelatedKind(t *testing.T) {
	err := obs.New(obs.KindHashMismatch, "engine", "install", errors.New("bad hash"))
	d := Decide(false, err)
	if d.Proceed {
		t.Error("Decide() should not proceed for a non-fallbackable kind like HashMismatch")
	}
}
