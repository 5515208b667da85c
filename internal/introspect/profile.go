// Package introspect implements the Project Introspector (§4.D): it
// combines the Platform Probe and the Source Parsers to classify a
// project's kind, infer required capabilities, enumerate dev tools, and
// compute a digest over its inputs.
package introspect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"dht/internal/parsers"
)

// ProjectKind is the scored-heuristic classification result.
type ProjectKind string

const (
	KindPythonApplication ProjectKind = "python_application"
	KindPythonLibrary     ProjectKind = "python_library"
	KindPythonDjango       ProjectKind = "python_django"
	KindPythonFlask       ProjectKind = "python_flask"
	KindUnknown           ProjectKind = "unknown"
)

// kindMarker is one scored signal for project-kind classification: a marker
// file, an imported package, or a build-backend name, each worth Weight
// points toward Kind. Ties are broken by Priority (lower wins), per §4.D.
type kindMarker struct {
	Kind     ProjectKind
	Priority int
	Weight   int
}

// ProjectProfile is the introspector's output (§4.D).
type ProjectProfile struct {
	Root                  string
	Kind                  ProjectKind
	RequiredCapabilities  []string // sorted, de-duplicated
	InferredDevTools      []string // sorted
	DeclaredInterpreter    string   // from pyproject.toml requires-python, "" if absent
	InputsDigest          string
}

// Ensure computes the ProjectProfile for root afresh on every call; it keeps
// no cache. A memoized profile with live invalidation is what Watcher
// (watch.go) provides.
func Ensure(root string) (*ProjectProfile, error) {
	pp, err := findPyProject(root)
	var declaredInterpreter string
	var deps []string
	if err == nil && pp != nil {
		declaredInterpreter = normalizeRequiresPython(pp.RequiresPython)
		deps = pp.Dependencies
	}

	imports, err := collectImports(root)
	if err != nil {
		return nil, fmt.Errorf("collecting imports under %s: %w", root, err)
	}

	kind := classifyKind(root, pp)
	caps := inferCapabilities(imports)

	digest, err := digestInputs(root)
	if err != nil {
		return nil, fmt.Errorf("digesting inputs under %s: %w", root, err)
	}

	_ = deps // reserved for future dependency-graph-aware scoring

	return &ProjectProfile{
		Root:                 root,
		Kind:                 kind,
		RequiredCapabilities: caps,
		InferredDevTools:     inferDevTools(root),
		DeclaredInterpreter:  declaredInterpreter,
		InputsDigest:         digest,
	}, nil
}

func findPyProject(root string) (*parsers.PyProject, error) {
	path := filepath.Join(root, "pyproject.toml")
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parsers.ParsePyProject(path)
}

// normalizeRequiresPython extracts a three-component version from a
// requires-python constraint like "==3.11.7"; constraints that do not pin
// an exact version (e.g. ">=3.10") yield "", since §4.F's ensure() needs an
// exact_version, not a range.
func normalizeRequiresPython(spec string) string {
	if len(spec) >= 2 && spec[:2] == "==" {
		return spec[2:]
	}
	return ""
}

// classifyKind runs the scored heuristic: each present marker contributes
// its weight to its Kind; the highest-scoring Kind wins, ties resolved by
// the declared Priority order (§4.D).
func classifyKind(root string, pp *parsers.PyProject) ProjectKind {
	scores := map[ProjectKind]int{}
	priorities := map[ProjectKind]int{}

	markers := detectMarkers(root, pp)
	for _, m := range markers {
		scores[m.Kind] += m.Weight
		if p, ok := priorities[m.Kind]; !ok || m.Priority < p {
			priorities[m.Kind] = m.Priority
		}
	}

	best := KindUnknown
	bestScore := 0
	bestPriority := int(^uint(0) >> 1)
	for kind, score := range scores {
		if score > bestScore || (score == bestScore && priorities[kind] < bestPriority) {
			best = kind
			bestScore = score
			bestPriority = priorities[kind]
		}
	}
	return best
}

func detectMarkers(root string, pp *parsers.PyProject) []kindMarker {
	var markers []kindMarker

	if pp != nil {
		markers = append(markers, kindMarker{Kind: KindPythonLibrary, Priority: 3, Weight: 1})
		if pp.BuildBackend != "" {
			markers = append(markers, kindMarker{Kind: KindPythonLibrary, Priority: 3, Weight: 2})
		}
		for _, dep := range pp.Dependencies {
			switch {
			case hasPrefixFold(dep, "django"):
				markers = append(markers, kindMarker{Kind: KindPythonDjango, Priority: 1, Weight: 5})
			case hasPrefixFold(dep, "flask"):
				markers = append(markers, kindMarker{Kind: KindPythonFlask, Priority: 2, Weight: 5})
			}
		}
	}

	if fileExists(filepath.Join(root, "manage.py")) {
		markers = append(markers, kindMarker{Kind: KindPythonDjango, Priority: 1, Weight: 4})
	}
	if fileExists(filepath.Join(root, "app.py")) || fileExists(filepath.Join(root, "wsgi.py")) {
		markers = append(markers, kindMarker{Kind: KindPythonFlask, Priority: 2, Weight: 3})
	}
	if fileExists(filepath.Join(root, "main.py")) {
		markers = append(markers, kindMarker{Kind: KindPythonApplication, Priority: 4, Weight: 2})
	}

	return markers
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		c1, c2 := s[i], prefix[i]
		if 'A' <= c1 && c1 <= 'Z' {
			c1 += 'a' - 'A'
		}
		if 'A' <= c2 && c2 <= 'Z' {
			c2 += 'a' - 'A'
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func inferDevTools(root string) []string {
	var tools []string
	candidates := map[string]string{
		".pre-commit-config.yaml": "pre-commit",
		"ruff.toml":               "ruff",
		".ruff.toml":              "ruff",
		"mypy.ini":                "mypy",
		"pytest.ini":              "pytest",
	}
	for file, tool := range candidates {
		if fileExists(filepath.Join(root, file)) {
			tools = append(tools, tool)
		}
	}
	sort.Strings(tools)
	return tools
}

// collectImports walks root collecting top-level Python import statements
// from every .py file, skipping generated directories per §4.C.
func collectImports(root string) ([]string, error) {
	seen := map[string]bool{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if parsers.IsIgnoredPath(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".py" {
			return nil
		}
		imports, err := parsers.ImportedPackages(path)
		if err != nil {
			return nil // unreadable file is not fatal to the whole walk
		}
		for _, imp := range imports {
			seen[imp] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for imp := range seen {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out, nil
}

// digestInputs hashes the set of source files contributing to the profile,
// so re-running Ensure with no changes returns the same digest (§8 property
// 2's idempotence, and the cache-invalidation contract in watch.go).
func digestInputs(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if parsers.IsIgnoredPath(path) {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".py", ".toml", ".lock", ".json", ".cfg", ".ini":
			info, err := d.Info()
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			fmt.Fprintf(h, "%s:%d\n", filepath.ToSlash(rel), info.Size())
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
