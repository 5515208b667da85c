// Package envutil provides the normalized subprocess environment, shell
// activation scripts, and cross-platform path resolution shared across the
// Interpreter Manager, Dependency Installer, and Task Runner.
package envutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// IsWindows reports whether DHT is running on Windows, where bin layouts
// and activation scripts differ from the POSIX norm.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// Home resolves the current user's home directory, working under sudo and
// cross-compiled binaries where os.UserHomeDir alone is unreliable.
func Home() (string, error) {
	return homedir.Dir()
}

// CacheDir resolves DHT's own cache root, honoring XDG_CACHE_HOME on Linux
// and the platform default elsewhere.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dht"), nil
}

// ExpandPath expands a leading ~ and any $HOME reference in path, mirroring
// the teacher's ExpandPath (env.go), generalized from layer-volume paths to
// any environment-relative path DHT writes into a manifest or script.
func ExpandPath(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	if path == "~" {
		return home
	}
	return strings.ReplaceAll(path, "$HOME", home)
}

// IsExecutable reports whether path exists and is runnable: a non-directory
// with an execute permission bit set (POSIX) or any non-directory at all
// (Windows, where executability is extension-based rather than a permission bit).
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if IsWindows() {
		return true
	}
	return info.Mode()&0111 != 0
}
