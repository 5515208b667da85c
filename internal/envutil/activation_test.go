package envutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeRedirectsCacheUnderEnvironmentDir(t *testing.T) {
	dir := "/home/project"
	env := Sanitize(dir)

	want := filepath.Join(dir, ".dht", "cache")
	if !strings.HasPrefix(env.Vars["PIP_CACHE_DIR"], want) {
		t.Errorf("PIP_CACHE_DIR = %q, want prefix %q", env.Vars["PIP_CACHE_DIR"], want)
	}
	if env.Vars["XDG_CACHE_HOME"] != want {
		t.Errorf("XDG_CACHE_HOME = %q, want %q", env.Vars["XDG_CACHE_HOME"], want)
	}
	if env.Vars["TZ"] != "UTC" {
		t.Errorf("TZ = %q, want UTC", env.Vars["TZ"])
	}
}

func TestMergeOverrideWins(t *testing.T) {
	base := &NormalizedEnv{Vars: map[string]string{"A": "1", "B": "2"}, PathPrefix: []string{"/base/bin"}}
	override := &NormalizedEnv{Vars: map[string]string{"B": "3"}, PathPrefix: []string{"/override/bin"}}

	got := Merge(base, override)
	if got.Vars["A"] != "1" || got.Vars["B"] != "3" {
		t.Errorf("Vars = %v, want A=1 B=3 (override wins)", got.Vars)
	}
	if len(got.PathPrefix) != 2 || got.PathPrefix[0] != "/base/bin" || got.PathPrefix[1] != "/override/bin" {
		t.Errorf("PathPrefix = %v, want [/base/bin /override/bin]", got.PathPrefix)
	}
}

func TestWriteActivationScriptExportsVarsAndPath(t *testing.T) {
	dir := t.TempDir()
	env := &NormalizedEnv{Vars: map[string]string{"TZ": "UTC"}}

	if err := WriteActivationScript(dir, filepath.Join(dir, "bin"), env); err != nil {
		t.Fatalf("WriteActivationScript() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".dht", "activate"))
	if err != nil {
		t.Fatalf("reading activate script: %v", err)
	}
	script := string(data)
	if !strings.Contains(script, `export TZ="UTC"`) {
		t.Errorf("activate script = %q, want it to export TZ", script)
	}
	if !strings.Contains(script, filepath.Join(dir, "bin")) {
		t.Errorf("activate script = %q, want bin dir on PATH", script)
	}
}

func TestWriteDotEnvWritesKeyValuePairs(t *testing.T) {
	dir := t.TempDir()
	env := &NormalizedEnv{Vars: map[string]string{"PYTHONHASHSEED": "0"}}

	if err := WriteDotEnv(dir, env); err != nil {
		t.Fatalf("WriteDotEnv() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("reading .env: %v", err)
	}
	if !strings.Contains(string(data), "PYTHONHASHSEED=0") {
		t.Errorf(".env contents = %q, want PYTHONHASHSEED=0", string(data))
	}
}
