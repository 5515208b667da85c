// Package parsers implements the Source Parsers (§4.C): one deterministic,
// side-effect-free parser per manifest/source format. Parsers never execute
// the source they read — Python is tokenized, not evaluated.
package parsers

import (
	"bytes"
	"path/filepath"
	"strings"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// normalizeText strips a UTF-8 BOM if present and normalizes CRLF to LF, so
// every parser downstream sees identical input regardless of the source
// platform's line-ending convention (§4.C).
func normalizeText(data []byte) string {
	data = bytes.TrimPrefix(data, bom)
	s := string(data)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// ignoredDirs are generated directories parsers must skip when walking a
// project tree (§4.C).
var ignoredDirs = []string{".venv", "node_modules", "__pycache__", "dist", "build", ".git"}

// IsIgnoredPath reports whether path falls under a generated directory that
// source discovery should skip.
func IsIgnoredPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, ignored := range ignoredDirs {
			if part == ignored {
				return true
			}
		}
	}
	return false
}
