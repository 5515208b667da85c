package depinstall

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"dht/internal/parsers"

	"golang.org/x/crypto/blake2b"
)

// hashers maps a lockfile's declared algorithm name to the function that
// computes it. sha256 and blake2b256 are tried in lockfile declaration
// order; the first algorithm this binary recognizes wins (§3's
// first-match-wins rule for multi-algorithm hash lists).
var hashers = map[string]func([]byte) string{
	"sha256": func(data []byte) string {
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	},
	"blake2b256": func(data []byte) string {
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	},
}

// VerifyHashes checks archivePath's content against the first hash entry
// whose algorithm this binary recognizes. A lockfile entry with no
// recognized algorithm is an error — silently skipping verification would
// defeat the point of pinning hashes at all.
func VerifyHashes(archivePath string, hashes []parsers.FileHash) error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("reading %s for hash verification: %w", archivePath, err)
	}

	for _, h := range hashes {
		hasher, ok := hashers[h.Algorithm]
		if !ok {
			continue
		}
		got := hasher(data)
		if got != h.Digest {
			return fmt.Errorf("%s digest mismatch: want %s, got %s", h.Algorithm, h.Digest, got)
		}
		return nil
	}
	return fmt.Errorf("no recognized hash algorithm among %d entries (want sha256 or blake2b256)", len(hashes))
}
