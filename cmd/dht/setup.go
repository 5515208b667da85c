package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"dht/internal/manifest"
)

// SetupCmd introspects a project and writes its initial manifest, per §6's
// "dht setup" entry: it never overwrites an existing .dhtconfig, since a
// second setup on an already-configured project would silently discard
// hand-edited keys.
type SetupCmd struct {
	Dir    string `arg:"" optional:"" default:"." help:"Project directory"`
	Strict bool   `help:"Require an exact interpreter match; never fall back to a system interpreter"`
}

func (c *SetupCmd) Run() error {
	ctx := context.Background()

	r, err := resolveRoot(ctx, c.Dir, c.Strict)
	if err != nil {
		return err
	}

	if _, err := os.Stat(r.ManifestAt); err == nil {
		return newUserError("manifest already exists at %s; edit it directly or run \"dht fix\"", r.ManifestAt)
	}

	release, err := ensureLock(r.Dir)
	if err != nil {
		return err
	}
	defer release()

	version := r.Profile.DeclaredInterpreter
	if version == "" {
		system, ok := findSystemPythonVersion()
		if !ok {
			return newUserError("no interpreter version declared in pyproject.toml and no system python3 found")
		}
		version = system
	}

	m := &manifest.Manifest{SchemaVersion: manifest.CurrentSchemaVersion}
	m.Interpreter.Version = version
	m.Interpreter.Implementation = "cpython"
	m.Capabilities = r.Profile.RequiredCapabilities
	m.Tools = toolVersionMap(r.Profile.InferredDevTools)
	m.Strict = c.Strict

	if err := manifest.Write(r.ManifestAt, m, inferredManifest(r.Profile)); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s (interpreter %s, %d capabilities, %d dev tools)\n",
		r.ManifestAt, version, len(m.Capabilities), len(m.Tools))
	return nil
}

// findSystemPythonVersion probes the host for a python3 to pin when the
// project declares no exact requires-python in pyproject.toml.
func findSystemPythonVersion() (string, bool) {
	path, err := exec.LookPath("python3")
	if err != nil {
		return "", false
	}
	out, err := exec.Command(path, "-c", "import platform; print(platform.python_version())").Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// toolVersionMap pins each inferred dev tool to "latest" until the first
// regeneration resolves and records an exact version; RegenerateCmd
// rewrites this map once real versions are known.
func toolVersionMap(tools []string) map[string]string {
	if len(tools) == 0 {
		return nil
	}
	out := make(map[string]string, len(tools))
	for _, t := range tools {
		out[t] = "latest"
	}
	return out
}
