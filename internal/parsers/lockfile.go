package parsers

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileHash is one entry in a PinnedDependency's multi-algorithm hash list
// (§3). Declaration order is preserved; verification tries entries in this
// order and stops at the first algorithm both sides have (§4.G full text).
type FileHash struct {
	Algorithm string `yaml:"algorithm"`
	Digest    string `yaml:"digest"`
}

// PinnedDependency is uniquely keyed by Name (§3).
type PinnedDependency struct {
	Name       string     `yaml:"name"`
	Version    string     `yaml:"version"`
	SourceKind string     `yaml:"source_kind"` // index | vcs | local
	Hashes     []FileHash `yaml:"hashes"`
	Extras     []string   `yaml:"extras,omitempty"`
	Markers    string     `yaml:"markers,omitempty"`
	DependsOn  []string   `yaml:"depends_on,omitempty"`
}

// LockFile is the resolver-native lock format (§3, §6). Ordered set of
// PinnedDependency plus resolver metadata.
type LockFile struct {
	ResolverID      string             `yaml:"resolver_id"`
	ResolverVersion string             `yaml:"resolver_version"`
	PythonSpec      string             `yaml:"python_spec"`
	CreatedAt       string             `yaml:"created_at"`
	Dependencies    []PinnedDependency `yaml:"dependencies"`
}

// ParseLockFile reads the primary resolver-native lockfile format. The
// caller is responsible for preferring this over the hashed-requirements
// fallback when both are present (§6).
func ParseLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var lf LockFile
	if err := yaml.Unmarshal([]byte(normalizeText(data)), &lf); err != nil {
		return nil, &ParseError{File: path, Offset: 0, Msg: err.Error()}
	}

	if err := detectCycles(lf.Dependencies); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &lf, nil
}

// detectCycles rejects a lockfile whose dependency graph contains a cycle,
// per §9's "cyclic references ... detected during lockfile load and
// rejected" design note.
func detectCycles(deps []PinnedDependency) error {
	byName := make(map[string]PinnedDependency, len(deps))
	for _, d := range deps {
		byName[d.Name] = d
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(deps))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, path...), name)
			return fmt.Errorf("cyclic dependency: %v", cycle)
		}
		color[name] = gray
		path = append(path, name)
		for _, dep := range byName[name].DependsOn {
			if _, ok := byName[dep]; !ok {
				continue // dependency outside the lockfile closure is a separate invariant
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}
