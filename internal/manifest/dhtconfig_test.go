package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dht/internal/obs"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".dhtconfig")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMinimal(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "schema_version: 1\n"+
		"interpreter:\n"+
		"  version: \"3.11.7\"\n"+
		"capabilities:\n"+
		"  - postgresql_client\n")

	m, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if m.Interpreter.Version != "3.11.7" {
		t.Errorf("Interpreter.Version = %q, want %q", m.Interpreter.Version, "3.11.7")
	}
	if len(m.Capabilities) != 1 || m.Capabilities[0] != "postgresql_client" {
		t.Errorf("Capabilities = %v, want [postgresql_client]", m.Capabilities)
	}
}

func TestReadMissingSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "interpreter:\n  version: \"3.11.7\"\n")

	_, err := Read(path)
	if err == nil {
		t.Fatal("Read() expected error for missing schema_version")
	}
	if kind, _ := obs.KindOf(err); kind != obs.KindManifestInvalid {
		t.Errorf("KindOf(err) = %q, want %q", kind, obs.KindManifestInvalid)
	}
}

func TestReadSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	// schema_version must be an integer; a string violates schemaV1.
	path := writeManifest(t, dir, "schema_version: \"one\"\n")

	_, err := Read(path)
	if err == nil {
		t.Fatal("Read() expected error for schema violation")
	}
	if kind, _ := obs.KindOf(err); kind != obs.KindManifestInvalid {
		t.Errorf("KindOf(err) = %q, want %q", kind, obs.KindManifestInvalid)
	}
}

func TestReadVersionTooNew(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "schema_version: 999\n")

	_, err := Read(path)
	if err == nil {
		t.Fatal("Read() expected error for unsupported schema_version")
	}
	if kind, _ := obs.KindOf(err); kind != obs.KindManifestVersionTooNew {
		t.Errorf("KindOf(err) = %q, want %q", kind, obs.KindManifestVersionTooNew)
	}
}

func TestReadPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "schema_version: 1\n"+
		"future_field:\n"+
		"  nested: true\n")

	m, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, ok := m.Unknown["future_field"]; !ok {
		t.Fatalf("Unknown = %v, want future_field preserved", m.Unknown)
	}

	out := filepath.Join(dir, "out.dhtconfig")
	if err := Write(out, m, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "future_field") {
		t.Errorf("written manifest lost unknown key future_field:\n%s", data)
	}
}

func TestWriteOmitsInferredValues(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{SchemaVersion: 1}
	m.Interpreter.Version = "3.11.7"
	m.Capabilities = []string{"postgresql_client", "ssl_toolkit"}

	inferred := &Manifest{SchemaVersion: 1}
	inferred.Interpreter.Version = "3.11.7"
	inferred.Capabilities = []string{"postgresql_client"}

	out := filepath.Join(dir, "out.dhtconfig")
	if err := Write(out, m, inferred); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	written, err := Read(out)
	if err != nil {
		t.Fatalf("Read() of written manifest error = %v", err)
	}
	if written.Interpreter.Version != "" {
		t.Errorf("Interpreter.Version = %q, want omitted (matches inferred)", written.Interpreter.Version)
	}
	if len(written.Capabilities) != 1 || written.Capabilities[0] != "ssl_toolkit" {
		t.Errorf("Capabilities = %v, want [ssl_toolkit] (postgresql_client matches inferred)", written.Capabilities)
	}
}

func TestReadHooksRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "schema_version: 1\n"+
		"hooks:\n"+
		"  - pre-commit\n")

	m, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(m.Hooks) != 1 || m.Hooks[0] != "pre-commit" {
		t.Fatalf("Hooks = %v, want [pre-commit]", m.Hooks)
	}
	if _, ok := m.Unknown["hooks"]; ok {
		t.Fatalf("Unknown = %v, hooks should be a recognized key, not preserved as unknown", m.Unknown)
	}

	out := filepath.Join(dir, "out.dhtconfig")
	if err := Write(out, m, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading written manifest: %v", err)
	}
	if strings.Count(string(data), "pre-commit") != 1 {
		t.Errorf("written manifest = %q, want \"pre-commit\" to appear exactly once", string(data))
	}
}

func TestMigrateUnknownIntermediateVersion(t *testing.T) {
	m := &Manifest{SchemaVersion: 0}
	_, err := Migrate(m, 0)
	if err == nil {
		t.Fatal("Migrate() expected error: no step registered from version 0")
	}
	if kind, _ := obs.KindOf(err); kind != obs.KindManifestInvalid {
		t.Errorf("KindOf(err) = %q, want %q", kind, obs.KindManifestInvalid)
	}
}
