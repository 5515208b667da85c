package devtools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndRemoveWrapperScript(t *testing.T) {
	dir := t.TempDir()

	path, err := writeWrapperScript(dir, "black", "/opt/dht/tools/black-24.0/bin/black")
	if err != nil {
		t.Fatalf("writeWrapperScript() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading wrapper: %v", err)
	}
	if !strings.Contains(string(data), wrapperMarker) {
		t.Error("wrapper script missing dht-wrapper marker")
	}

	if err := removeWrapperScript(dir, "black"); err != nil {
		t.Fatalf("removeWrapperScript() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("wrapper script still exists after removal")
	}
}

func TestRemoveWrapperScriptRefusesUnmarkedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruff")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho not a wrapper\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := removeWrapperScript(dir, "ruff"); err == nil {
		t.Fatal("removeWrapperScript() expected an error for an unmarked file")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("unmarked file should not have been removed")
	}
}

func TestRemoveWrapperScriptMissing(t *testing.T) {
	dir := t.TempDir()
	if err := removeWrapperScript(dir, "nope"); err == nil {
		t.Fatal("removeWrapperScript() expected an error for a missing wrapper")
	}
}
