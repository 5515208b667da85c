package main

import (
	"path/filepath"
	"testing"

	"dht/internal/capability"
	"dht/internal/fingerprint"
	"dht/internal/introspect"
	"dht/internal/manifest"
	"dht/internal/parsers"
	"dht/internal/platform"
)

func TestPlatformKeyNarrowsProbedInfo(t *testing.T) {
	info := &platform.Info{
		Family:              "linux",
		Distribution:        "ubuntu",
		DistributionVersion: "24.04",
		Arch:                "amd64",
	}
	got := platformKey(info)
	want := capability.PlatformKey{
		Family:       "linux",
		Distribution: "ubuntu",
		VersionRange: "24.04",
		Arch:         "amd64",
	}
	if got != want {
		t.Errorf("platformKey(%+v) = %+v, want %+v", info, got, want)
	}
}

func TestLockedVersions(t *testing.T) {
	lock := &parsers.LockFile{
		Dependencies: []parsers.PinnedDependency{
			{Name: "requests", Version: "2.31.0"},
			{Name: "numpy", Version: "1.26.4"},
		},
	}
	got := lockedVersions(lock)
	want := map[string]string{"requests": "2.31.0", "numpy": "1.26.4"}
	if len(got) != len(want) {
		t.Fatalf("lockedVersions() returned %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("lockedVersions()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestBuildExpectationUnionsCapabilities(t *testing.T) {
	m := &manifest.Manifest{Capabilities: []string{"image_codecs_jpeg"}}
	m.Interpreter.Version = "3.11.7"
	profile := &introspect.ProjectProfile{RequiredCapabilities: []string{"tls", "image_codecs_jpeg"}}

	got := buildExpectation(m, profile, map[string]string{"requests": "2.31.0"})

	if got.InterpreterVersion != "3.11.7" {
		t.Errorf("InterpreterVersion = %q, want 3.11.7", got.InterpreterVersion)
	}
	if got.Packages["requests"] != "2.31.0" {
		t.Errorf("Packages[requests] = %q, want 2.31.0", got.Packages["requests"])
	}
	want := fingerprint.Expectation{
		InterpreterVersion: "3.11.7",
		Packages:           map[string]string{"requests": "2.31.0"},
		Capabilities:       introspect.CapabilityUnion(profile.RequiredCapabilities, m.Capabilities),
	}
	if len(got.Capabilities) != len(want.Capabilities) {
		t.Errorf("Capabilities = %v, want %v", got.Capabilities, want.Capabilities)
	}
}

func TestBuildExpectationFallsBackToDeclaredInterpreter(t *testing.T) {
	// An interpreter version stripInferred omitted (because it matched
	// profile.DeclaredInterpreter) must not disable the version check.
	m := &manifest.Manifest{}
	profile := &introspect.ProjectProfile{DeclaredInterpreter: "3.12.1"}

	got := buildExpectation(m, profile, nil)
	if got.InterpreterVersion != "3.12.1" {
		t.Errorf("InterpreterVersion = %q, want fallback to profile.DeclaredInterpreter %q", got.InterpreterVersion, "3.12.1")
	}
}

func TestInferredManifestMirrorsProfile(t *testing.T) {
	profile := &introspect.ProjectProfile{
		DeclaredInterpreter:  "3.11.7",
		RequiredCapabilities: []string{"postgresql_client"},
	}

	got := inferredManifest(profile)
	if got.Interpreter.Version != "3.11.7" {
		t.Errorf("Interpreter.Version = %q, want 3.11.7", got.Interpreter.Version)
	}
	if got.Interpreter.Implementation != "cpython" {
		t.Errorf("Interpreter.Implementation = %q, want cpython", got.Interpreter.Implementation)
	}
	if len(got.Capabilities) != 1 || got.Capabilities[0] != "postgresql_client" {
		t.Errorf("Capabilities = %v, want [postgresql_client]", got.Capabilities)
	}
}

func TestBinDirAndPythonBinAgree(t *testing.T) {
	dir := "/home/project"
	bin := binDir(dir)
	py := pythonBin(dir)
	if filepath.Dir(py) != bin {
		t.Errorf("pythonBin(%q) = %q, not under binDir() = %q", dir, py, bin)
	}
}
