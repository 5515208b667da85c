package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dht/internal/devtools"
	"dht/internal/envutil"
)

// CleanCmd removes everything DHT wrote into a project so the next
// "dht regenerate" starts from nothing: the isolated environment (bin/
// or, on Windows, just the linked interpreter and tool wrappers, since
// there BinDir is the project root itself), its site-packages, and the
// .dht/ state directory (cache, activation script, task queue,
// checkpoint, lock file).
type CleanCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Project directory"`
}

func (c *CleanCmd) Run() error {
	ctx := context.Background()

	r, err := resolveRoot(ctx, c.Dir, false)
	if err != nil {
		return err
	}

	release, err := ensureLock(r.Dir)
	if err != nil {
		return err
	}
	defer release()

	if _, err := os.Stat(r.ManifestAt); err == nil {
		if err := r.loadManifest(); err == nil {
			for name := range r.Manifest.Tools {
				if err := devtools.Remove(r.BinDir, name); err != nil && !os.IsNotExist(err) {
					fmt.Fprintf(os.Stderr, "removing %s wrapper: %v\n", name, err)
				}
			}
		}
	}

	removed := 0
	for _, target := range cleanTargets(r.Dir) {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing %s: %w", target, err)
		}
		removed++
	}

	fmt.Fprintf(os.Stdout, "cleaned %s (%d paths removed)\n", r.Dir, removed)
	return nil
}

// cleanTargets lists every DHT-managed path under dir, platform-specific
// because a POSIX environment's bin/ and lib/ sit apart from the project
// root while a Windows environment links directly into it.
func cleanTargets(dir string) []string {
	dotDht := filepath.Join(dir, ".dht")
	if envutil.IsWindows() {
		return []string{
			dotDht,
			filepath.Join(dir, "python.exe"),
			filepath.Join(dir, "Lib", "site-packages"),
		}
	}
	return []string{
		dotDht,
		filepath.Join(dir, "bin"),
		filepath.Join(dir, "lib", "site-packages"),
	}
}
