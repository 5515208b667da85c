package parsers

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseHashedRequirements reads the fallback hashed-requirements format
// (pip's `--require-hashes` style): one `name==version --hash=sha256:...`
// entry per line, used when no resolver-native lockfile is present (§6).
func ParseHashedRequirements(path string) ([]PinnedDependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var deps []PinnedDependency
	scanner := bufio.NewScanner(f)
	offset := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		offset += len(raw) + 1

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		nameVersion := fields[0]
		name, version, ok := strings.Cut(nameVersion, "==")
		if !ok {
			return nil, &ParseError{File: path, Offset: offset, Msg: fmt.Sprintf("line %d: expected name==version, got %q", lineNo, nameVersion)}
		}

		dep := PinnedDependency{Name: name, Version: version, SourceKind: "index"}
		for _, field := range fields[1:] {
			if h, ok := strings.CutPrefix(field, "--hash="); ok {
				algo, digest, ok := strings.Cut(h, ":")
				if !ok {
					return nil, &ParseError{File: path, Offset: offset, Msg: fmt.Sprintf("line %d: malformed hash %q", lineNo, h)}
				}
				dep.Hashes = append(dep.Hashes, FileHash{Algorithm: algo, Digest: digest})
			}
		}
		if len(dep.Hashes) == 0 {
			return nil, &ParseError{File: path, Offset: offset, Msg: fmt.Sprintf("line %d: %q has no --hash entries", lineNo, name)}
		}
		deps = append(deps, dep)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return deps, nil
}
