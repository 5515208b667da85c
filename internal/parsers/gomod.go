package parsers

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// GoMod is the subset of go.mod relevant to classifying a project as having
// a Go component (§4.D), e.g. a project that ships a Go-based dev tool
// alongside its Python package.
type GoMod struct {
	ModulePath string
	GoVersion  string
	Requires   []string // sorted module paths, direct requires only
}

// ParseGoMod is a line-oriented reader of go.mod's module/go/require
// directives; it does not resolve replace directives or build a full module
// graph, since the Introspector only needs presence-of-Go-component
// classification and a sorted dependency name list.
func ParseGoMod(path string) (*GoMod, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	gm := &GoMod{}
	depSet := map[string]bool{}
	inRequireBlock := false

	for _, line := range strings.Split(normalizeText(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "module "):
			gm.ModulePath = strings.TrimSpace(strings.TrimPrefix(trimmed, "module "))
		case strings.HasPrefix(trimmed, "go "):
			gm.GoVersion = strings.TrimSpace(strings.TrimPrefix(trimmed, "go "))
		case trimmed == "require (":
			inRequireBlock = true
		case trimmed == ")":
			inRequireBlock = false
		case strings.HasPrefix(trimmed, "require "):
			addRequireLine(depSet, strings.TrimPrefix(trimmed, "require "))
		case inRequireBlock:
			addRequireLine(depSet, trimmed)
		}
	}

	for dep := range depSet {
		gm.Requires = append(gm.Requires, dep)
	}
	sort.Strings(gm.Requires)

	if gm.ModulePath == "" {
		return nil, &ParseError{File: path, Offset: 0, Msg: "no module directive found"}
	}
	return gm, nil
}

func addRequireLine(depSet map[string]bool, line string) {
	if strings.Contains(line, "// indirect") {
		return
	}
	fields := strings.Fields(line)
	if len(fields) >= 1 {
		depSet[fields[0]] = true
	}
}
