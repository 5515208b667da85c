package envutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizedEnv is the fixed subprocess environment every build/install
// step runs under, so the same inputs produce byte-identical outputs on
// any host (§6's reproducibility contract). Grounded on the teacher's
// EnvConfig/MergeEnvConfigs shape (env.go), generalized from "merge a
// layer's env file" to "construct the one normalized environment every
// regeneration step runs in".
type NormalizedEnv struct {
	Vars       map[string]string
	PathPrefix []string
}

// Sanitize builds the normalized environment for environmentDir: a fixed
// PYTHONHASHSEED, UTC timezone, UTF-8 locale, unbuffered Python output, and
// cache directories redirected under environmentDir rather than the host's
// default user cache (§4.G's cache-redirection rule).
func Sanitize(environmentDir string) *NormalizedEnv {
	cache := filepath.Join(environmentDir, ".dht", "cache")
	return &NormalizedEnv{
		Vars: map[string]string{
			"PYTHONHASHSEED":                 "0",
			"TZ":                             "UTC",
			"LANG":                           "C.UTF-8",
			"LC_ALL":                         "C.UTF-8",
			"PYTHONUNBUFFERED":               "1",
			"PYTHONDONTWRITEBYTECODE":        "0",
			"PIP_CACHE_DIR":                  filepath.Join(cache, "pip"),
			"PIP_NO_INPUT":                   "1",
			"PIP_DISABLE_PIP_VERSION_CHECK":  "1",
			"XDG_CACHE_HOME":                 cache,
		},
	}
}

// Merge layers override onto base, with override's Vars taking precedence
// and PathPrefix entries accumulating in order, mirroring the teacher's
// MergeEnvConfigs semantics ("later configs override earlier", env.go).
func Merge(base, override *NormalizedEnv) *NormalizedEnv {
	merged := &NormalizedEnv{Vars: map[string]string{}}
	for k, v := range base.Vars {
		merged.Vars[k] = v
	}
	for k, v := range override.Vars {
		merged.Vars[k] = v
	}
	merged.PathPrefix = append(append([]string{}, base.PathPrefix...), override.PathPrefix...)
	return merged
}

// Environ renders the normalized environment as a sorted "KEY=value" slice
// suitable for exec.Cmd.Env, with PATH built from PathPrefix plus the
// supplied system PATH.
func (e *NormalizedEnv) Environ(systemPath string) []string {
	keys := make([]string, 0, len(e.Vars))
	for k := range e.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, e.Vars[k]))
	}

	pathSep := ":"
	if IsWindows() {
		pathSep = ";"
	}
	var pathParts []string
	for _, p := range append(append([]string{}, e.PathPrefix...), systemPath) {
		if p != "" {
			pathParts = append(pathParts, p)
		}
	}
	out = append(out, "PATH="+strings.Join(pathParts, pathSep))
	return out
}
