package envutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// WriteDotEnv mirrors env's variables into a .env file at environmentDir,
// so tools that read dotenv files (rather than shelling out through DHT's
// own activation script) see the same normalized environment. Wires
// github.com/joho/godotenv for parsing symmetry with anything that later
// re-reads this file.
func WriteDotEnv(environmentDir string, env *NormalizedEnv) error {
	path := filepath.Join(environmentDir, ".env")
	if err := godotenv.Write(env.Vars, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteActivationScript writes a POSIX shell activation script (suitable
// for "source .dht/activate") that exports env and prepends BinDir to
// PATH, in the spirit of a Python venv's activate script.
func WriteActivationScript(environmentDir, binDir string, env *NormalizedEnv) error {
	var buf bytes.Buffer
	buf.WriteString("#!/bin/sh\n")

	keys := make([]string, 0, len(env.Vars))
	for k := range env.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "export %s=%q\n", k, env.Vars[k])
	}
	fmt.Fprintf(&buf, "export PATH=%q:\"$PATH\"\n", binDir)

	path := filepath.Join(environmentDir, ".dht", "activate")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0755)
}
