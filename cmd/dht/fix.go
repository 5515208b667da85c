package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dht/internal/engine"
	"dht/internal/fingerprint"
	"dht/internal/taskrunner"
)

// FixCmd repairs exactly the drifted parts of the environment: it diffs
// against the manifest, builds the minimal repair plan (§4.J's repair()),
// and re-runs only the engine steps that plan names.
type FixCmd struct {
	Dir    string `arg:"" optional:"" default:"." help:"Project directory"`
	Strict bool   `help:"Never fall back on a recoverable failure"`
}

func (c *FixCmd) Run() error {
	ctx := context.Background()

	r, err := resolveRoot(ctx, c.Dir, c.Strict)
	if err != nil {
		return err
	}
	if err := r.loadManifest(); err != nil {
		return err
	}
	strict := c.Strict || r.Manifest.Strict

	discrepancies, err := diffAgainstManifest(r)
	if err != nil {
		return err
	}
	if len(discrepancies) == 0 {
		fmt.Fprintf(os.Stdout, "%s already matches its recorded fingerprint\n", r.Dir)
		return nil
	}

	actions := fingerprint.Plan(discrepancies)
	steps := stepsForRepair(actions)

	release, err := ensureLock(r.Dir)
	if err != nil {
		return err
	}
	defer release()

	queue, err := taskrunner.OpenQueue(r.Dir)
	if err != nil {
		return err
	}
	defer queue.Close()

	rs := newRegenState(r, queue, strict, false)
	exec := &engine.Executor{
		Plan:   &engine.Plan{Steps: steps},
		Strict: strict,
		Steps: map[engine.StepKind]engine.StepFunc{
			engine.StepProbePlatform:       rs.stepProbePlatform,
			engine.StepIntrospectProject:   rs.stepIntrospectProject,
			engine.StepResolveCapabilities: rs.stepResolveCapabilities,
			engine.StepInstallCapabilities: rs.stepInstallCapabilities,
			engine.StepEnsureInterpreter:   rs.stepEnsureInterpreter,
			engine.StepCreateEnvironment:   rs.stepCreateEnvironment,
			engine.StepInstallDependencies: rs.stepInstallDependencies,
			engine.StepInstallDevTools:     rs.stepInstallDevTools,
			engine.StepValidateEnvironment: rs.stepValidateEnvironment,
		},
		ParallelItems: map[engine.StepKind]engine.ParallelItemsFunc{
			engine.StepInstallCapabilities: rs.capabilityItems,
			engine.StepInstallDevTools:     rs.devToolItems,
		},
	}

	if err := exec.Run(ctx); err != nil {
		return err
	}
	if len(rs.report.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, rs.report.String())
	}
	fmt.Fprintf(os.Stdout, "repaired %d discrepancies in %s\n", len(discrepancies), r.Dir)
	return nil
}

// stepsForRepair maps repair actions to the minimal ordered set of engine
// steps that can fix them (§4.J's "[FULL]" repair-to-step mapping):
// interpreter drift needs the interpreter resolved and the environment
// relinked; a capability diff needs it re-resolved and reinstalled; any
// other package diff goes through the dependency installer. Always
// finishes with validate so the repaired state is re-fingerprinted.
func stepsForRepair(actions []fingerprint.RepairAction) []engine.StepKind {
	needed := map[engine.StepKind]bool{}
	for _, a := range actions {
		switch {
		case a.Package == "__interpreter__":
			needed[engine.StepProbePlatform] = true
			needed[engine.StepEnsureInterpreter] = true
			needed[engine.StepCreateEnvironment] = true
		case strings.HasPrefix(a.Package, "capability:"):
			needed[engine.StepProbePlatform] = true
			needed[engine.StepIntrospectProject] = true
			needed[engine.StepResolveCapabilities] = true
			needed[engine.StepInstallCapabilities] = true
		default:
			needed[engine.StepInstallDependencies] = true
		}
	}

	var ordered []engine.StepKind
	for _, step := range []engine.StepKind{
		engine.StepProbePlatform,
		engine.StepIntrospectProject,
		engine.StepResolveCapabilities,
		engine.StepInstallCapabilities,
		engine.StepEnsureInterpreter,
		engine.StepCreateEnvironment,
		engine.StepInstallDependencies,
	} {
		if needed[step] {
			ordered = append(ordered, step)
		}
	}
	if len(ordered) > 0 {
		ordered = append(ordered, engine.StepValidateEnvironment)
	}
	return ordered
}
