package parsers

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ShellScript is what the generic shell tokenizer discovers from a script
// without ever executing it (§4.C): sourced files, defined function names,
// exported variable names, and bare command words. This deliberately is not
// a full POSIX shell grammar — quoting and parameter expansion are handled
// just well enough to avoid matching inside a quoted string, matching the
// teacher's own quote-escaping helper in alias.go's generateAliasScript.
type ShellScript struct {
	Sourced   []string // sorted
	Functions []string // sorted
	Exported  []string // sorted
	Commands  []string // sorted, first word of each non-empty statement
}

var (
	reSource    = regexp.MustCompile(`^\s*(?:source|\.)\s+([^\s;&|]+)`)
	reFuncDecl1 = regexp.MustCompile(`^\s*function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(?\)?\s*\{?`)
	reFuncDecl2 = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\)\s*\{?`)
	reExport    = regexp.MustCompile(`^\s*export\s+([A-Za-z_][A-Za-z0-9_]*)=`)
)

// TokenizeShellScript reads path and returns its discoverable structure.
func TokenizeShellScript(path string) (*ShellScript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sourced := map[string]bool{}
	functions := map[string]bool{}
	exported := map[string]bool{}
	commands := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := reSource.FindStringSubmatch(line); m != nil {
			sourced[stripQuotes(m[1])] = true
			continue
		}
		if m := reFuncDecl1.FindStringSubmatch(line); m != nil {
			functions[m[1]] = true
			continue
		}
		if m := reFuncDecl2.FindStringSubmatch(line); m != nil {
			functions[m[1]] = true
			continue
		}
		if m := reExport.FindStringSubmatch(line); m != nil {
			exported[m[1]] = true
			continue
		}

		if word := firstWord(trimmed); word != "" {
			commands[word] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &ShellScript{
		Sourced:   sortedSet(sourced),
		Functions: sortedSet(functions),
		Exported:  sortedSet(exported),
		Commands:  sortedSet(commands),
	}, nil
}

func stripQuotes(s string) string {
	s = strings.Trim(s, `"'`)
	return s
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	w := fields[0]
	if strings.ContainsAny(w, "=(){}") {
		return ""
	}
	return w
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
