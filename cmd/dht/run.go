package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"dht/internal/envutil"
)

// RunCmd runs an arbitrary command inside the regenerated environment: the
// wrapper bin directory goes first on PATH and every subprocess variable
// from Sanitize is exported, so a tool invoked through "dht run" behaves
// exactly as it would inside the activation script (§4.G, §6).
type RunCmd struct {
	Dir     string   `help:"Project directory" default:"."`
	Command []string `arg:"" passthrough:"" help:"Command and arguments to run"`
}

func (c *RunCmd) Run() error {
	ctx := context.Background()

	if len(c.Command) == 0 {
		return newUserError("no command given to \"dht run\"")
	}

	r, err := resolveRoot(ctx, c.Dir, false)
	if err != nil {
		return err
	}
	if err := r.loadManifest(); err != nil {
		return err
	}

	env := envutil.Sanitize(r.Dir)
	env.PathPrefix = append([]string{r.BinDir}, env.PathPrefix...)

	path, err := findInPath(c.Command[0], env.PathPrefix)
	if err != nil {
		return newUserError("%s: %w", c.Command[0], err)
	}

	return execReplace(path, append([]string{path}, c.Command[1:]...), env.Environ(os.Getenv("PATH")))
}

// findInPath resolves name against prefixes first (so the environment's
// own bin directory wins over whatever the host's PATH would pick), then
// falls back to the host PATH via exec.LookPath.
func findInPath(name string, prefixes []string) (string, error) {
	for _, dir := range prefixes {
		candidate := dir + string(os.PathSeparator) + name
		if envutil.IsWindows() {
			candidate += ".exe"
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return exec.LookPath(name)
}
