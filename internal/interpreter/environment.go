package interpreter

import (
	"fmt"
	"os"
	"path/filepath"

	"dht/internal/envutil"
)

// CreateEnvironment materializes an isolated environment directory at dir
// for interp: a normalized bin/ (or root, on Windows) layout plus an empty
// site-packages target the Dependency Installer populates. Grounded on the
// teacher's volume-path normalization (volumes.go's expandHome/CollectImageVolumes),
// generalized from "resolve container volume mount paths" to "lay out an
// isolated interpreter environment directory".
func CreateEnvironment(dir string, interp *Interpreter) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating environment directory %s: %w", dir, err)
	}

	binDir := normalizedBinDir(dir)
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("creating bin directory %s: %w", binDir, err)
	}

	sitePackages := filepath.Join(dir, sitePackagesRelDir())
	if err := os.MkdirAll(sitePackages, 0755); err != nil {
		return fmt.Errorf("creating site-packages directory %s: %w", sitePackages, err)
	}

	return linkInterpreterBinaries(interp.BinDir, binDir)
}

// sitePackagesRelDir is the conventional CPython site-packages path
// relative to an environment root, platform-specific because the Windows
// layout has no "lib/pythonX.Y" level.
func sitePackagesRelDir() string {
	if envutil.IsWindows() {
		return filepath.Join("Lib", "site-packages")
	}
	return filepath.Join("lib", "site-packages")
}

// linkInterpreterBinaries symlinks (or, on Windows, copies) the python
// entry point from a managed or system interpreter's bin directory into
// the environment's own normalized bin directory, so every downstream
// step invokes "python" at one fixed, environment-relative path regardless
// of where the underlying interpreter actually lives.
func linkInterpreterBinaries(sourceBinDir, destBinDir string) error {
	name := "python"
	if envutil.IsWindows() {
		name = "python.exe"
	}

	src := filepath.Join(sourceBinDir, name)
	dst := filepath.Join(destBinDir, name)

	if _, err := os.Lstat(dst); err == nil {
		os.Remove(dst)
	}

	if envutil.IsWindows() {
		return copyFile(src, dst)
	}
	return os.Symlink(src, dst)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	return os.WriteFile(dst, data, 0755)
}
