// Package interpreter implements the Interpreter Manager (§4.F): resolving,
// downloading, and wiring up the Python interpreter a regenerated
// environment runs against.
package interpreter

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"dht/internal/envutil"
	"dht/internal/obs"
)

// Interpreter is a resolved, usable Python interpreter.
type Interpreter struct {
	Version        string // exact "3.11.7"
	Implementation string // "cpython" (default) or "pypy"
	BinDir         string // normalized bin directory containing "python"
	Managed        bool   // true if DHT downloaded and owns this interpreter
}

// Request names what the caller wants resolved.
type Request struct {
	Version        string
	Implementation string
	EnvironmentDir string // root of the environment being built
	Strict         bool
}

// Ensure resolves a usable interpreter for req, trying four sources in
// order (§4.F full text):
//  1. an interpreter DHT already manages under EnvironmentDir's cache,
//  2. a managed download of the exact pinned version,
//  3. a compatible system interpreter found on PATH,
//  4. failure as InterpreterUnavailable.
//
// Step 3 is skipped entirely when req.Strict is set — strict mode never
// falls back to whatever happens to be on the host (§6's strict-mode
// contract).
func Ensure(ctx context.Context, req Request) (*Interpreter, error) {
	if managed, ok := findManaged(req); ok {
		return managed, nil
	}

	downloaded, err := downloadManaged(ctx, req)
	if err == nil {
		return downloaded, nil
	}
	downloadErr := err

	if !req.Strict {
		if system, ok := findSystem(req); ok {
			return system, nil
		}
	}

	return nil, obs.New(obs.KindInterpreterUnavailable, "interpreter", "ensure",
		fmt.Errorf("no managed, downloadable, or system interpreter satisfies version %s (%s): %w",
			req.Version, req.Implementation, downloadErr))
}

func managedRoot(envDir string) string {
	return filepath.Join(envDir, ".dht", "interpreters")
}

func versionDir(req Request) string {
	impl := req.Implementation
	if impl == "" {
		impl = "cpython"
	}
	return filepath.Join(managedRoot(req.EnvironmentDir), impl+"-"+req.Version)
}

func findManaged(req Request) (*Interpreter, bool) {
	dir := versionDir(req)
	binDir := normalizedBinDir(dir)
	if !envutil.IsExecutable(filepath.Join(binDir, "python")) {
		return nil, false
	}
	return &Interpreter{
		Version:        req.Version,
		Implementation: implOrDefault(req.Implementation),
		BinDir:         binDir,
		Managed:        true,
	}, true
}

// normalizedBinDir returns the platform-normalized location of the "bin"
// (POSIX) or interpreter-root (Windows) directory within an unpacked
// interpreter artifact, mirroring the teacher's expandHome path-resolution
// idiom from its volume-mount normalization (volumes.go), generalized here
// from container volume paths to interpreter artifact layouts.
func normalizedBinDir(root string) string {
	if envutil.IsWindows() {
		return root
	}
	return filepath.Join(root, "bin")
}

func implOrDefault(impl string) string {
	if impl == "" {
		return "cpython"
	}
	return impl
}

// findSystem looks for a compatible interpreter on PATH: "python3.11" for
// an exact version, falling back to "python3" and checking its reported
// version matches exactly. A range-only request (no exact patch version)
// accepts the first python3.X found with the right major.minor.
func findSystem(req Request) (*Interpreter, bool) {
	candidates := systemCandidateNames(req.Version)
	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		version, err := probeVersion(path)
		if err != nil {
			continue
		}
		if req.Version != "" && version != req.Version &&
			(strings.Count(req.Version, ".") >= 2 || !strings.HasPrefix(version, majorMinor(req.Version)+".")) {
			continue
		}
		return &Interpreter{
			Version:        version,
			Implementation: implOrDefault(req.Implementation),
			BinDir:         filepath.Dir(path),
			Managed:        false,
		}, true
	}
	return nil, false
}

func systemCandidateNames(version string) []string {
	mm := majorMinor(version)
	if mm == "" {
		return []string{"python3"}
	}
	return []string{"python" + mm, "python3"}
}

func majorMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func probeVersion(path string) (string, error) {
	out, err := exec.Command(path, "-c", "import platform; print(platform.python_version())").Output()
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}
