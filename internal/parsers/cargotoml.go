package parsers

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// CargoToml is the subset of Cargo.toml relevant to classifying a project
// as having a Rust native-extension component (§4.D project-kind scoring).
type CargoToml struct {
	PackageName  string
	Dependencies []string // sorted
}

var (
	reCargoDepLine = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*=`)
	reCargoName    = regexp.MustCompile(`^name\s*=\s*"([^"]*)"`)
)

// ParseCargoToml extracts [package].name and the dependency names declared
// under [dependencies]. Like ParsePyProject, this is a flat-key subset
// parser, not a general TOML document model.
func ParseCargoToml(path string) (*CargoToml, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ct := &CargoToml{}
	depSet := map[string]bool{}
	section := ""
	for _, line := range strings.Split(normalizeText(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := reSection.FindStringSubmatch(trimmed); m != nil {
			section = m[1]
			continue
		}
		switch section {
		case "package":
			if m := reCargoName.FindStringSubmatch(trimmed); m != nil {
				ct.PackageName = m[1]
			}
		case "dependencies":
			if m := reCargoDepLine.FindStringSubmatch(trimmed); m != nil {
				depSet[m[1]] = true
			}
		}
	}

	for name := range depSet {
		ct.Dependencies = append(ct.Dependencies, name)
	}
	sort.Strings(ct.Dependencies)
	return ct, nil
}
