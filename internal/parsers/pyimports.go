package parsers

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Python setup scripts and modules are parsed syntactically, never
// executed, per §4.C. This is a restricted import-statement walker, not a
// full Python grammar: it recognizes top-level and indented
// `import x[, y]` and `from x import y[, z]` statements sufficient to drive
// §4.D's capability inference, and ignores everything else (function
// bodies, string contents, decorators).
var (
	reImport     = regexp.MustCompile(`^\s*import\s+([A-Za-z_][A-Za-z0-9_.]*(?:\s*,\s*[A-Za-z_][A-Za-z0-9_.]*)*)`)
	reFromImport = regexp.MustCompile(`^\s*from\s+([A-Za-z_][A-Za-z0-9_.]*)\s+import\b`)
)

// ImportedPackages walks a Python source file and returns the top-level
// package name (the part before the first dot) of every module it imports,
// sorted and de-duplicated per §4.C's ordering rule for unordered sets.
func ImportedPackages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := map[string]bool{}
	scanner := bufio.NewScanner(f)
	inTripleQuote := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		// Skip the contents of triple-quoted strings/docstrings — a crude
		// but sufficient guard against matching "import" inside a string
		// literal without building a full tokenizer.
		if strings.Count(trimmed, `"""`)%2 == 1 || strings.Count(trimmed, "'''")%2 == 1 {
			inTripleQuote = !inTripleQuote
			continue
		}
		if inTripleQuote {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := reFromImport.FindStringSubmatch(line); m != nil {
			seen[topLevel(m[1])] = true
			continue
		}
		if m := reImport.FindStringSubmatch(line); m != nil {
			for _, name := range strings.Split(m[1], ",") {
				seen[topLevel(strings.TrimSpace(name))] = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func topLevel(dotted string) string {
	name, _, _ := strings.Cut(dotted, ".")
	return name
}
