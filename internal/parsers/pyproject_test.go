package parsers

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParsePyProjectMinimal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := "[project]\n" +
		"requires-python = \"==3.11.7\"\n" +
		"dependencies = [\n" +
		"  \"requests==2.31.0\",\n" +
		"]\n" +
		"\n" +
		"[build-system]\n" +
		"build-backend = \"setuptools.build_meta\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	pp, err := ParsePyProject(path)
	if err != nil {
		t.Fatalf("ParsePyProject() error = %v", err)
	}
	if pp.RequiresPython != "==3.11.7" {
		t.Errorf("RequiresPython = %q, want %q", pp.RequiresPython, "==3.11.7")
	}
	if !reflect.DeepEqual(pp.Dependencies, []string{"requests==2.31.0"}) {
		t.Errorf("Dependencies = %v, want [requests==2.31.0]", pp.Dependencies)
	}
	if pp.BuildBackend != "setuptools.build_meta" {
		t.Errorf("BuildBackend = %q, want %q", pp.BuildBackend, "setuptools.build_meta")
	}
}

func TestParsePyProjectCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := "\xEF\xBB\xBF[project]\r\nrequires-python = \"==3.12.0\"\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	pp, err := ParsePyProject(path)
	if err != nil {
		t.Fatalf("ParsePyProject() error = %v", err)
	}
	if pp.RequiresPython != "==3.12.0" {
		t.Errorf("RequiresPython = %q, want %q", pp.RequiresPython, "==3.12.0")
	}
}

func TestParsePyProjectMissingSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(path, []byte("[tool.black]\nline-length = 100\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParsePyProject(path); err == nil {
		t.Fatal("ParsePyProject() expected error for missing [project]/[build-system], got nil")
	}
}
