package interpreter

import (
	"context"
	"testing"
)

func TestMajorMinor(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"3.11.7", "3.11"},
		{"3.11", "3.11"},
		{"3", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := majorMinor(tt.version); got != tt.want {
			t.Errorf("majorMinor(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestSystemCandidateNames(t *testing.T) {
	tests := []struct {
		version string
		want    []string
	}{
		{"3.11.7", []string{"python3.11", "python3"}},
		{"", []string{"python3"}},
	}
	for _, tt := range tests {
		got := systemCandidateNames(tt.version)
		if len(got) != len(tt.want) {
			t.Fatalf("systemCandidateNames(%q) = %v, want %v", tt.version, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("systemCandidateNames(%q)[%d] = %q, want %q", tt.version, i, got[i], tt.want[i])
			}
		}
	}
}

func TestVersionDirIncludesImplementation(t *testing.T) {
	req := Request{Version: "3.11.7", EnvironmentDir: "/tmp/env"}
	dir := versionDir(req)
	if got, want := dir, "/tmp/env/.dht/interpreters/cpython-3.11.7"; got != want {
		t.Errorf("versionDir() = %q, want %q", got, want)
	}
}

func TestEnsureFailsWithoutStrictFallback(t *testing.T) {
	req := Request{Version: "9.99.99", EnvironmentDir: t.TempDir(), Strict: true}
	_, err := Ensure(context.Background(), req)
	if err == nil {
		t.Fatal("Ensure() expected error for an unresolvable interpreter in strict mode")
	}
}
