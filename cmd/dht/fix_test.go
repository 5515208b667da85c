package main

import (
	"reflect"
	"testing"

	"dht/internal/engine"
	"dht/internal/fingerprint"
)

func TestStepsForRepairInterpreter(t *testing.T) {
	got := stepsForRepair([]fingerprint.RepairAction{{Package: "__interpreter__"}})
	want := []engine.StepKind{
		engine.StepProbePlatform,
		engine.StepEnsureInterpreter,
		engine.StepCreateEnvironment,
		engine.StepValidateEnvironment,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stepsForRepair(interpreter) = %v, want %v", got, want)
	}
}

func TestStepsForRepairCapability(t *testing.T) {
	got := stepsForRepair([]fingerprint.RepairAction{{Package: "capability:image_codecs_jpeg"}})
	want := []engine.StepKind{
		engine.StepProbePlatform,
		engine.StepIntrospectProject,
		engine.StepResolveCapabilities,
		engine.StepInstallCapabilities,
		engine.StepValidateEnvironment,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stepsForRepair(capability) = %v, want %v", got, want)
	}
}

func TestStepsForRepairOrdinaryPackage(t *testing.T) {
	got := stepsForRepair([]fingerprint.RepairAction{{Package: "requests"}})
	want := []engine.StepKind{engine.StepInstallDependencies, engine.StepValidateEnvironment}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stepsForRepair(package) = %v, want %v", got, want)
	}
}

func TestStepsForRepairMixedDedupes(t *testing.T) {
	got := stepsForRepair([]fingerprint.RepairAction{
		{Package: "requests"},
		{Package: "capability:image_codecs_jpeg"},
		{Package: "numpy"},
	})
	want := []engine.StepKind{
		engine.StepProbePlatform,
		engine.StepIntrospectProject,
		engine.StepResolveCapabilities,
		engine.StepInstallCapabilities,
		engine.StepInstallDependencies,
		engine.StepValidateEnvironment,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stepsForRepair(mixed) = %v, want %v", got, want)
	}
}

func TestStepsForRepairEmpty(t *testing.T) {
	if got := stepsForRepair(nil); got != nil {
		t.Errorf("stepsForRepair(nil) = %v, want nil", got)
	}
}
