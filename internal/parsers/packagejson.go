package parsers

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// PackageJSON is the subset of package.json the Project Introspector needs
// to recognize a mixed Node/Python project and enumerate its declared
// scripts.
type PackageJSON struct {
	Name            string
	Dependencies    []string // sorted, per §4.C's "sort keys for unordered sets"
	DevDependencies []string
	Scripts         map[string]string
}

type rawPackageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// ParsePackageJSON reads package.json and returns its dependency names in
// sorted order (package.json dependency objects are unordered maps, so §4.C
// requires sorting before returning).
func ParsePackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw rawPackageJSON
	if err := json.Unmarshal([]byte(normalizeText(data)), &raw); err != nil {
		return nil, &ParseError{File: path, Offset: 0, Msg: err.Error()}
	}

	return &PackageJSON{
		Name:            raw.Name,
		Dependencies:    sortedKeys(raw.Dependencies),
		DevDependencies: sortedKeys(raw.DevDependencies),
		Scripts:         raw.Scripts,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
