package depinstall

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"dht/internal/parsers"
)

func TestVerifyHashesSha256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.archive")
	data := []byte("fake wheel contents")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)

	err := VerifyHashes(path, []parsers.FileHash{
		{Algorithm: "sha256", Digest: hex.EncodeToString(sum[:])},
	})
	if err != nil {
		t.Errorf("VerifyHashes() error = %v", err)
	}
}

func TestVerifyHashesMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.archive")
	if err := os.WriteFile(path, []byte("actual contents"), 0644); err != nil {
		t.Fatal(err)
	}

	err := VerifyHashes(path, []parsers.FileHash{
		{Algorithm: "sha256", Digest: "0000000000000000000000000000000000000000000000000000000000000000"[:64]},
	})
	if err == nil {
		t.Fatal("VerifyHashes() expected error for mismatched digest")
	}
}

func TestVerifyHashesSkipsUnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.archive")
	data := []byte("contents")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)

	err := VerifyHashes(path, []parsers.FileHash{
		{Algorithm: "md5", Digest: "deadbeef"},
		{Algorithm: "sha256", Digest: hex.EncodeToString(sum[:])},
	})
	if err != nil {
		t.Errorf("VerifyHashes() error = %v, want it to skip md5 and match sha256", err)
	}
}

func TestVerifyHashesNoRecognizedAlgorithm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.archive")
	if err := os.WriteFile(path, []byte("contents"), 0644); err != nil {
		t.Fatal(err)
	}

	err := VerifyHashes(path, []parsers.FileHash{{Algorithm: "md5", Digest: "deadbeef"}})
	if err == nil {
		t.Fatal("VerifyHashes() expected error when no hash algorithm is recognized")
	}
}

func TestPlanKeepsAlreadyInstalled(t *testing.T) {
	lock := &parsers.LockFile{
		Dependencies: []parsers.PinnedDependency{
			{Name: "requests", Version: "2.31.0"},
			{Name: "flask", Version: "3.0.0"},
		},
	}
	installed := map[string]string{"requests": "2.31.0", "flask": "2.0.0"}

	steps := Plan(lock, installed)
	if len(steps) != 2 {
		t.Fatalf("Plan() returned %d steps, want 2", len(steps))
	}
	if !steps[0].Keep {
		t.Errorf("steps[0] (requests, matching version) should be Keep")
	}
	if steps[1].Keep {
		t.Errorf("steps[1] (flask, version mismatch) should not be Keep")
	}
}
