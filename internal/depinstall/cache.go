package depinstall

import "path/filepath"

// CacheDir returns the Dependency Installer's download cache, redirected
// under the environment root rather than the host's default pip cache
// (§4.G's cache-redirection rule), so two hosts building the same manifest
// never interact through a shared user-level cache that could introduce
// host-specific drift. Grounded on the teacher's RuntimeConfigPath
// (runtime_config.go), which resolves a config path under a fixed root
// rather than trusting ambient XDG/HOME state.
func CacheDir(environmentDir string) string {
	return filepath.Join(environmentDir, ".dht", "cache", "downloads")
}
