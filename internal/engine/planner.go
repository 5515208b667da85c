// Package engine implements the Regeneration Engine (§4.I): the twelve-step
// plan that turns a manifest into a running environment, with
// checkpointing, bounded-parallel capability installs, and strict-mode
// fallback escalation.
package engine

import (
	"fmt"
)

// StepKind names one of the twelve regeneration steps, in the fixed order
// §4.I requires them to run.
type StepKind string

const (
	StepProbePlatform       StepKind = "probe_platform"
	StepLoadManifest        StepKind = "load_manifest"
	StepIntrospectProject   StepKind = "introspect_project"
	StepResolveCapabilities StepKind = "resolve_capabilities"
	StepInstallCapabilities StepKind = "install_capabilities"
	StepEnsureInterpreter   StepKind = "ensure_interpreter"
	StepCreateEnvironment   StepKind = "create_environment"
	StepInstallDependencies StepKind = "install_dependencies"
	StepInstallDevTools     StepKind = "install_dev_tools"
	StepInstallHooks        StepKind = "install_hooks"
	StepEmitActivation      StepKind = "emit_activation"
	StepValidateEnvironment StepKind = "validate_environment"
)

// stepOrder is the fixed step sequence. Grounded directly on the teacher's
// ResolveLayerOrder/topoSort (graph.go): the same "dependencies before
// dependents, deterministic tie-break" shape, generalized from "order a
// dynamic set of container layers" to "order a fixed twelve-step regeneration
// pipeline" — the step graph itself is static, so no runtime topological
// sort is needed, only the ordering discipline it embodies.
var stepOrder = []StepKind{
	StepProbePlatform,
	StepLoadManifest,
	StepIntrospectProject,
	StepResolveCapabilities,
	StepInstallCapabilities,
	StepEnsureInterpreter,
	StepCreateEnvironment,
	StepInstallDependencies,
	StepInstallDevTools,
	StepInstallHooks,
	StepEmitActivation,
	StepValidateEnvironment,
}

// parallelizableSteps names steps whose per-item work (one per capability,
// one per dev tool) may run concurrently, per §4.I's bounded-parallelism
// rule. Every other step runs as a single unit.
var parallelizableSteps = map[StepKind]bool{
	StepInstallCapabilities: true,
	StepInstallDevTools:     true,
}

// Plan is the ordered, resumable list of steps for one regeneration run.
type Plan struct {
	Steps []StepKind
}

// NewPlan returns the fixed twelve-step plan, optionally starting partway
// through for a resumed run (§4.I's checkpoint/resume contract).
func NewPlan(resumeAfter StepKind) (*Plan, error) {
	if resumeAfter == "" {
		return &Plan{Steps: append([]StepKind{}, stepOrder...)}, nil
	}

	idx := indexOf(resumeAfter)
	if idx == -1 {
		return nil, fmt.Errorf("unknown checkpoint step %q", resumeAfter)
	}
	return &Plan{Steps: append([]StepKind{}, stepOrder[idx+1:]...)}, nil
}

func indexOf(step StepKind) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// IsParallelizable reports whether step's per-item work may run
// concurrently, bounded by MaxParallelInstalls (executor.go).
func IsParallelizable(step StepKind) bool {
	return parallelizableSteps[step]
}
