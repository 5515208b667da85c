package main

import (
	"path/filepath"
	"testing"

	"dht/internal/envutil"
)

func TestCleanTargetsIncludesDotDht(t *testing.T) {
	dir := "/home/project"
	targets := cleanTargets(dir)
	want := filepath.Join(dir, ".dht")
	found := false
	for _, target := range targets {
		if target == want {
			found = true
		}
	}
	if !found {
		t.Errorf("cleanTargets(%q) = %v, missing %q", dir, targets, want)
	}
}

func TestCleanTargetsCountMatchesPlatform(t *testing.T) {
	targets := cleanTargets("/home/project")
	if len(targets) != 3 {
		t.Errorf("cleanTargets() returned %d targets, want 3", len(targets))
	}
	for _, target := range targets {
		if !filepath.IsAbs(target) {
			t.Errorf("cleanTargets() entry %q is not absolute", target)
		}
	}
	if envutil.IsWindows() {
		return
	}
	want := filepath.Join("/home/project", "bin")
	if targets[1] != want {
		t.Errorf("cleanTargets()[1] = %q, want %q", targets[1], want)
	}
}
