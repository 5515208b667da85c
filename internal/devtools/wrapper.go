package devtools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dht/internal/envutil"
)

// wrapperMarker identifies a file this package wrote, so removal can refuse
// to delete anything it didn't create itself. Grounded directly on the
// teacher's alias.go: generateAliasScript/writeAliasScript/removeAliasScript
// use the same "# ov-alias" marker-and-verify-before-delete shape, repurposed
// here from host-command aliases to pinned dev-tool invocations.
const wrapperMarker = "# dht-wrapper"

func generateWrapperScript(entrypoint string) string {
	return fmt.Sprintf(`#!/bin/sh
# dht-wrapper
# entrypoint: %s
exec "%s" "$@"
`, entrypoint, entrypoint)
}

func generateWrapperBatch(entrypoint string) string {
	return fmt.Sprintf(":: dht-wrapper\r\n:: entrypoint: %s\r\n@\"%s\" %%*\r\n", entrypoint, entrypoint)
}

// writeWrapperScript writes the wrapper invoking entrypoint into dir/name,
// returning the wrapper's path. The wrapper is the only supported way to
// invoke a dev tool; it never copies or symlinks the isolated binary.
func writeWrapperScript(dir, name, entrypoint string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating wrapper directory %s: %w", dir, err)
	}

	if envutil.IsWindows() {
		path := filepath.Join(dir, name+".bat")
		if err := os.WriteFile(path, []byte(generateWrapperBatch(entrypoint)), 0644); err != nil {
			return "", fmt.Errorf("writing wrapper %s: %w", path, err)
		}
		return path, nil
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(generateWrapperScript(entrypoint)), 0755); err != nil {
		return "", fmt.Errorf("writing wrapper %s: %w", path, err)
	}
	return path, nil
}

// removeWrapperScript verifies the file has the dht-wrapper marker before
// deleting it, so a hand-edited or unrelated file in the bin directory is
// never silently removed.
func removeWrapperScript(dir, name string) error {
	candidates := []string{filepath.Join(dir, name), filepath.Join(dir, name+".bat")}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !strings.Contains(string(data), wrapperMarker) {
			return fmt.Errorf("%s is not a dht wrapper (missing marker)", path)
		}
		return os.Remove(path)
	}
	return fmt.Errorf("wrapper %q not found in %s", name, dir)
}
