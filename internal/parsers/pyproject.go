package parsers

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// PyProject is the structured subset of pyproject.toml this engine needs:
// just enough to drive interpreter resolution and dependency discovery
// without a full TOML document model.
type PyProject struct {
	RequiresPython string
	Dependencies   []string // declaration order preserved, per §4.C
	BuildBackend   string
}

var (
	reSection        = regexp.MustCompile(`^\[([^\]]+)\]\s*$`)
	reRequiresPython = regexp.MustCompile(`^requires-python\s*=\s*"([^"]*)"`)
	reBuildBackend   = regexp.MustCompile(`^build-backend\s*=\s*"([^"]*)"`)
	reListItem       = regexp.MustCompile(`"([^"]+)"`)
)

// ParsePyProject extracts project.requires-python, project.dependencies,
// and build-system.build-backend from a pyproject.toml file. It handles
// only the flat-key and string-array subset those three fields need (the
// dependencies array may span several lines); it is not a general TOML parser.
func ParsePyProject(path string) (*PyProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text := normalizeText(data)

	pp := &PyProject{}
	section := ""
	lines := strings.Split(text, "\n")
	inDepsArray := false

	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := reSection.FindStringSubmatch(trimmed); m != nil {
			section = m[1]
			inDepsArray = false
			offset += len(line) + 1
			continue
		}

		switch section {
		case "project":
			if m := reRequiresPython.FindStringSubmatch(trimmed); m != nil {
				pp.RequiresPython = m[1]
			}
			if strings.HasPrefix(trimmed, "dependencies") && strings.Contains(trimmed, "[") {
				inDepsArray = !strings.Contains(trimmed, "]")
				for _, d := range reListItem.FindAllStringSubmatch(trimmed, -1) {
					pp.Dependencies = append(pp.Dependencies, d[1])
				}
			} else if inDepsArray {
				for _, d := range reListItem.FindAllStringSubmatch(trimmed, -1) {
					pp.Dependencies = append(pp.Dependencies, d[1])
				}
				if strings.Contains(trimmed, "]") {
					inDepsArray = false
				}
			}
		case "build-system":
			if m := reBuildBackend.FindStringSubmatch(trimmed); m != nil {
				pp.BuildBackend = m[1]
			}
		}
		offset += len(line) + 1
	}

	if pp.RequiresPython == "" && pp.BuildBackend == "" && len(pp.Dependencies) == 0 {
		return nil, &ParseError{File: path, Offset: 0, Msg: "no [project] or [build-system] section found"}
	}
	return pp, nil
}
