// Package devtools implements the Dev-Tool Installer (§4.H): each tool gets
// its own isolated environment, and a pinned-version wrapper script is the
// only path by which DHT-managed code ever invokes it.
package devtools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"dht/internal/envutil"
	"dht/internal/obs"
	"dht/internal/sandbox"
)

// ToolInstallation records one installed tool, mirroring the manifest's
// ToolInstallation shape (§4.5): the isolated root a wrapper forwards into,
// and the wrapper itself.
type ToolInstallation struct {
	ToolID       string
	ExactVersion string
	IsolatedRoot string
	Entrypoint   string
	WrapperPath  string
}

// Install ensures every tool in tools (name -> pinned version) has its own
// isolated environment under environmentDir and a wrapper in wrapperBinDir,
// skipping tools whose isolated root already matches the pinned version.
// Iterates in sorted order for deterministic output, not because order
// matters to correctness: each tool's install is independent.
func Install(ctx context.Context, pythonBin, environmentDir, wrapperBinDir string, tools map[string]string) ([]ToolInstallation, error) {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	installations := make([]ToolInstallation, 0, len(names))
	for _, name := range names {
		version := tools[name]
		inst, err := InstallOne(ctx, pythonBin, environmentDir, wrapperBinDir, name, version)
		if err != nil {
			return nil, obs.New(obs.KindBuildFailed, "devtools", name, err)
		}
		installations = append(installations, inst)
	}
	return installations, nil
}

// InstallOne installs a single tool, the unit internal/engine's parallel
// step fans out over (one goroutine per dev tool, bounded by
// engine.MaxParallelInstalls).
func InstallOne(ctx context.Context, pythonBin, environmentDir, wrapperBinDir, name, version string) (ToolInstallation, error) {
	root := toolRoot(environmentDir, name, version)

	if !isInstalled(root, version) {
		if err := os.RemoveAll(root); err != nil {
			return ToolInstallation{}, fmt.Errorf("clearing stale install of %s: %w", name, err)
		}
		if err := createToolEnv(ctx, pythonBin, root); err != nil {
			return ToolInstallation{}, fmt.Errorf("creating isolated environment for %s: %w", name, err)
		}
		if err := installToolPackage(ctx, root, name, version); err != nil {
			return ToolInstallation{}, fmt.Errorf("installing %s==%s: %w", name, version, err)
		}
		if err := markInstalled(root, version); err != nil {
			return ToolInstallation{}, err
		}
	}

	entrypoint := toolEntrypoint(root, name)
	wrapperPath, err := writeWrapperScript(wrapperBinDir, name, entrypoint)
	if err != nil {
		return ToolInstallation{}, err
	}

	return ToolInstallation{
		ToolID:       name,
		ExactVersion: version,
		IsolatedRoot: root,
		Entrypoint:   entrypoint,
		WrapperPath:  wrapperPath,
	}, nil
}

// toolRoot places each tool's isolated environment under the environment's
// own .dht directory, alongside managed interpreters and the dependency
// cache, so the whole regenerated environment lives under one root.
func toolRoot(environmentDir, name, version string) string {
	return filepath.Join(environmentDir, ".dht", "tools", name+"-"+version)
}

const versionMarkerFile = ".dht-tool-version"

func isInstalled(root, version string) bool {
	data, err := os.ReadFile(filepath.Join(root, versionMarkerFile))
	if err != nil {
		return false
	}
	return string(data) == version
}

func markInstalled(root, version string) error {
	return os.WriteFile(filepath.Join(root, versionMarkerFile), []byte(version), 0644)
}

func createToolEnv(ctx context.Context, pythonBin, root string) error {
	if err := os.MkdirAll(filepath.Dir(root), 0755); err != nil {
		return err
	}
	res, err := sandbox.Run(ctx, filepath.Dir(root), os.Environ(), pythonBin, "-m", "venv", root)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("python -m venv exited %d: %s", res.ExitCode, res.Output)
	}
	return nil
}

func installToolPackage(ctx context.Context, root, name, version string) error {
	env := envutil.Sanitize(root)
	pip := toolEntrypoint(root, "pip")
	res, err := sandbox.Run(ctx, root, env.Environ(os.Getenv("PATH")), pip, "install", fmt.Sprintf("%s==%s", name, version))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("pip install exited %d: %s", res.ExitCode, res.Output)
	}
	return nil
}

// toolEntrypoint locates a console script inside an isolated tool
// environment: bin/<name> on POSIX, Scripts\<name>.exe on Windows.
func toolEntrypoint(root, name string) string {
	if envutil.IsWindows() {
		return filepath.Join(root, "Scripts", name+".exe")
	}
	return filepath.Join(root, "bin", name)
}

// Remove deletes a tool's wrapper only; the isolated installation is left
// in place, per §4.H's "removal never deletes the isolated installation".
func Remove(wrapperBinDir, name string) error {
	return removeWrapperScript(wrapperBinDir, name)
}
