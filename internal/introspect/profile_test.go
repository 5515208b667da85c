package introspect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureMinimalApp(t *testing.T) {
	dir := t.TempDir()
	pyproject := "[project]\n" +
		"requires-python = \"==3.11.7\"\n" +
		"dependencies = [\n" +
		"  \"requests==2.31.0\",\n" +
		"]\n"
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(pyproject), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("import requests\n"), 0644); err != nil {
		t.Fatal(err)
	}

	profile, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if profile.DeclaredInterpreter != "3.11.7" {
		t.Errorf("DeclaredInterpreter = %q, want %q", profile.DeclaredInterpreter, "3.11.7")
	}
	if profile.Kind != KindPythonApplication {
		t.Errorf("Kind = %q, want %q", profile.Kind, KindPythonApplication)
	}
}

func TestEnsureInfersCapabilityFromImport(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import psycopg2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	profile, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(profile.RequiredCapabilities) != 1 || profile.RequiredCapabilities[0] != "postgresql_client" {
		t.Errorf("RequiredCapabilities = %v, want [postgresql_client]", profile.RequiredCapabilities)
	}
}

func TestEnsureIgnoresVenvDirectory(t *testing.T) {
	dir := t.TempDir()
	venvDir := filepath.Join(dir, ".venv", "lib")
	if err := os.MkdirAll(venvDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(venvDir, "site.py"), []byte("import psycopg2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	profile, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(profile.RequiredCapabilities) != 0 {
		t.Errorf("RequiredCapabilities = %v, want none (generated dir must be ignored)", profile.RequiredCapabilities)
	}
}

func TestCapabilityUnionDoesNotDropDeclared(t *testing.T) {
	got := CapabilityUnion([]string{"postgresql_client"}, []string{"image_codecs_jpeg"})
	want := []string{"image_codecs_jpeg", "postgresql_client"}
	if len(got) != len(want) {
		t.Fatalf("CapabilityUnion() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CapabilityUnion()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
