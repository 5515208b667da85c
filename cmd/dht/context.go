package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dht/internal/capability"
	"dht/internal/engine"
	"dht/internal/envlock"
	"dht/internal/envutil"
	"dht/internal/fingerprint"
	"dht/internal/interpreter"
	"dht/internal/introspect"
	"dht/internal/manifest"
	"dht/internal/parsers"
	"dht/internal/platform"
	"dht/internal/taskrunner"
)

// manifestFileName is where every command looks for the project manifest,
// relative to the environment directory (root).
const manifestFileName = ".dhtconfig"

// root is the shared composition state every command builds from: the
// project/environment directory is the same path (§3's environment_dir is
// the project root itself), with all DHT-managed state living under its
// own .dht subdirectory.
type root struct {
	Dir        string
	ManifestAt string
	BinDir     string
	PythonBin  string

	Platform   *platform.Info
	Registry   *capability.Registry
	Manifest   *manifest.Manifest
	Profile    *introspect.ProjectProfile
}

func resolveRoot(ctx context.Context, dir string, strict bool) (*root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, newUserError("resolving project directory %s: %w", dir, err)
	}

	profile, err := introspect.Ensure(abs)
	if err != nil {
		return nil, fmt.Errorf("introspecting %s: %w", abs, err)
	}

	r := &root{
		Dir:        abs,
		ManifestAt: filepath.Join(abs, manifestFileName),
		BinDir:     binDir(abs),
		PythonBin:  pythonBin(abs),
		Platform:   platform.Probe(ctx),
		Registry:   capability.NewRegistry(),
		Profile:    profile,
	}
	return r, nil
}

// loadManifest reads and (if the schema version requires it) migrates the
// project's manifest. Missing the file entirely is a user error: every
// command but setup requires one to already exist.
func (r *root) loadManifest() error {
	if _, err := os.Stat(r.ManifestAt); err != nil {
		return newUserError("no manifest at %s: run \"dht setup\" first", r.ManifestAt)
	}
	m, err := manifest.Read(r.ManifestAt)
	if err != nil {
		return err
	}
	r.Manifest = m
	return nil
}

// binDir is the environment's normalized bin directory: bin/ on POSIX,
// the environment root itself on Windows, mirroring
// internal/interpreter's own (unexported) normalizedBinDir so every
// installed interpreter, wrapper script, and activation PATH entry agree
// on one location.
func binDir(environmentDir string) string {
	if envutil.IsWindows() {
		return environmentDir
	}
	return filepath.Join(environmentDir, "bin")
}

func pythonBin(environmentDir string) string {
	name := "python"
	if envutil.IsWindows() {
		name = "python.exe"
	}
	return filepath.Join(binDir(environmentDir), name)
}

// platformKey narrows a probed platform.Info down to the capability
// registry's PlatformKey shape.
func platformKey(info *platform.Info) capability.PlatformKey {
	return capability.PlatformKey{
		Family:       info.Family,
		Distribution: info.Distribution,
		VersionRange: info.DistributionVersion,
		Arch:         info.Arch,
	}
}

// taskCheckpointer adapts one taskrunner.Queue task's checkpoint column to
// the engine.Checkpointer contract, so a regeneration run wrapped in a
// single durable Task resumes at the right engine step after a crash.
type taskCheckpointer struct {
	queue  *taskrunner.Queue
	taskID string
}

func (c *taskCheckpointer) Save(step engine.StepKind) error {
	return c.queue.SaveCheckpoint(c.taskID, string(step))
}

func (c *taskCheckpointer) Load() (engine.StepKind, error) {
	step, err := c.queue.LoadCheckpoint(c.taskID)
	if err != nil {
		return "", err
	}
	return engine.StepKind(step), nil
}

// buildExpectation turns a manifest plus the project's current profile into
// the fingerprint package's Expectation shape, for validate/fix. A manifest
// interpreter version that stripInferred omitted because it matched the
// profile's own inference falls back to that inferred value, rather than
// silently disabling the interpreter-version check.
func buildExpectation(m *manifest.Manifest, profile *introspect.ProjectProfile, lockedVersions map[string]string) fingerprint.Expectation {
	version := m.Interpreter.Version
	if version == "" {
		version = profile.DeclaredInterpreter
	}
	return fingerprint.Expectation{
		InterpreterVersion: version,
		Packages:           lockedVersions,
		Capabilities:       introspect.CapabilityUnion(profile.RequiredCapabilities, m.Capabilities),
	}
}

// inferredManifest builds the manifest fields introspection would derive
// on its own (interpreter version from pyproject.toml, implied
// capabilities from imports), so manifest.Write can omit anything that
// merely restates it — §4.D's "capabilities inferable from dependencies
// are not persisted back to the manifest" and §4.E's minimality guarantee.
func inferredManifest(profile *introspect.ProjectProfile) *manifest.Manifest {
	inferred := &manifest.Manifest{}
	inferred.Interpreter.Version = profile.DeclaredInterpreter
	inferred.Interpreter.Implementation = "cpython"
	inferred.Capabilities = profile.RequiredCapabilities
	return inferred
}

// probeInterpreterVersion asks the interpreter actually installed at
// pythonBin for its version, independent of what the manifest records —
// validate and fix both need the observed value, not the expectation.
func probeInterpreterVersion(pythonBin string) (string, error) {
	out, err := exec.Command(pythonBin, "-c", "import platform; print(platform.python_version())").Output()
	if err != nil {
		return "", fmt.Errorf("probing interpreter at %s: %w", pythonBin, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// lockedVersions extracts name -> pinned-version from a lockfile, for
// fingerprint.Expectation.Packages.
func lockedVersions(lock *parsers.LockFile) map[string]string {
	out := make(map[string]string, len(lock.Dependencies))
	for _, dep := range lock.Dependencies {
		out[dep.Name] = dep.Version
	}
	return out
}

// ensureLock acquires the environment-root file lock and returns a
// release func to defer; it is the first thing every mutating command
// does, per §5's exclusive-lock contract.
func ensureLock(dir string) (func(), error) {
	l, err := envlock.Acquire(dir)
	if err != nil {
		return nil, fmt.Errorf("acquiring environment lock: %w", err)
	}
	return func() { l.Release() }, nil
}

// resolvedInterpreter runs the Interpreter Manager against the manifest's
// pinned version, honoring strict mode's no-system-fallback rule. A version
// or implementation stripInferred omitted from the manifest (because it
// matched the profile's own inference) falls back to that inferred value.
func resolvedInterpreter(ctx context.Context, r *root, strict bool) (*interpreter.Interpreter, error) {
	version := r.Manifest.Interpreter.Version
	if version == "" {
		version = r.Profile.DeclaredInterpreter
	}
	implementation := r.Manifest.Interpreter.Implementation
	if implementation == "" {
		implementation = "cpython"
	}
	return interpreter.Ensure(ctx, interpreter.Request{
		Version:        version,
		Implementation: implementation,
		EnvironmentDir: r.Dir,
		Strict:         strict,
	})
}
