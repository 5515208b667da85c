package depinstall

import (
	"context"
	"fmt"
	"path/filepath"

	"dht/internal/envutil"
	"dht/internal/sandbox"
)

// RegenerateBytecode recompiles every .py file under environmentDir's
// site-packages with PYTHONHASHSEED fixed (already set in env), so the
// resulting .pyc files are byte-identical across hosts (§4.G's
// determinism requirement for compiled bytecode).
func RegenerateBytecode(ctx context.Context, pythonBin, environmentDir string, env *envutil.NormalizedEnv) error {
	sitePackages := sitePackagesDir(environmentDir)
	args := []string{"-m", "compileall", "-q", "-f", sitePackages}

	res, err := sandbox.Run(ctx, environmentDir, env.Environ(""), pythonBin, args...)
	if err != nil {
		return fmt.Errorf("compiling bytecode under %s: %w", sitePackages, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("compileall exited %d: %s", res.ExitCode, res.Output)
	}
	return nil
}

func sitePackagesDir(environmentDir string) string {
	if envutil.IsWindows() {
		return filepath.Join(environmentDir, "Lib", "site-packages")
	}
	return filepath.Join(environmentDir, "lib", "site-packages")
}
