package devtools

import (
	"path/filepath"
	"testing"
)

func TestToolRootIncludesNameAndVersion(t *testing.T) {
	root := toolRoot("/env", "black", "24.1.0")
	want := filepath.Join("/env", ".dht", "tools", "black-24.1.0")
	if root != want {
		t.Errorf("toolRoot() = %q, want %q", root, want)
	}
}

func TestMarkAndIsInstalled(t *testing.T) {
	dir := t.TempDir()

	if isInstalled(dir, "1.0.0") {
		t.Error("isInstalled() should be false before marking")
	}

	if err := markInstalled(dir, "1.0.0"); err != nil {
		t.Fatalf("markInstalled() error = %v", err)
	}
	if !isInstalled(dir, "1.0.0") {
		t.Error("isInstalled() should be true after marking with the matching version")
	}
	if isInstalled(dir, "2.0.0") {
		t.Error("isInstalled() should be false for a different version")
	}
}
