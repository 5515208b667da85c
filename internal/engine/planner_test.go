package engine

import "testing"

func TestNewPlanFromStart(t *testing.T) {
	plan, err := NewPlan("")
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if len(plan.Steps) != len(stepOrder) {
		t.Fatalf("NewPlan() returned %d steps, want %d", len(plan.Steps), len(stepOrder))
	}
	if plan.Steps[0] != StepProbePlatform {
		t.Errorf("Steps[0] = %q, want %q", plan.Steps[0], StepProbePlatform)
	}
}

func TestNewPlanResumeAfterCheckpoint(t *testing.T) {
	plan, err := NewPlan(StepEnsureInterpreter)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if plan.Steps[0] != StepCreateEnvironment {
		t.Errorf("Steps[0] = %q, want %q (the step after the checkpoint)", plan.Steps[0], StepCreateEnvironment)
	}
	for _, s := range plan.Steps {
		if s == StepProbePlatform || s == StepEnsureInterpreter {
			t.Errorf("resumed plan should not include already-completed step %q", s)
		}
	}
}

func TestNewPlanUnknownCheckpoint(t *testing.T) {
	_, err := NewPlan(StepKind("not_a_real_step"))
	if err == nil {
		t.Fatal("NewPlan() expected error for an unknown checkpoint step")
	}
}

func TestIsParallelizable(t *testing.T) {
	if !IsParallelizable(StepInstallCapabilities) {
		t.Error("StepInstallCapabilities should be parallelizable")
	}
	if IsParallelizable(StepLoadManifest) {
		t.Error("StepLoadManifest should not be parallelizable")
	}
}
