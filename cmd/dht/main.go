// Command dht regenerates a behaviorally identical Python development
// environment from a project's manifest and source tree. The CLI surface
// itself is a thin front end (§1 names it an external collaborator); all
// the interesting behavior lives in internal/.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"dht/internal/obs"
)

// CLI mirrors the six commands §6 names as the external interface.
type CLI struct {
	Setup      SetupCmd      `cmd:"" help:"Introspect a project and write an initial manifest"`
	Regenerate RegenerateCmd `cmd:"" help:"Rebuild the environment from the manifest"`
	Validate   ValidateCmd   `cmd:"" help:"Check the environment against its fingerprint"`
	Fix        FixCmd        `cmd:"" help:"Repair exactly the drifted parts of the environment"`
	Clean      CleanCmd      `cmd:"" help:"Remove DHT-managed state for a project"`
	Run        RunCmd        `cmd:"" help:"Run a command inside the regenerated environment"`
}

// Exit codes, per §6: 0 success, 2 user error, 3 drift detected, 4
// infrastructure failure, 5 strict-mode violation.
const (
	exitSuccess         = 0
	exitUserError       = 2
	exitDriftDetected   = 3
	exitInfrastructure  = 4
	exitStrictViolation = 5
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("dht"),
		kong.Description("Regenerate behaviorally identical Python development environments"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	if err == nil {
		os.Exit(exitSuccess)
	}

	obs.NewLogger(os.Stderr, slog.LevelError).Error(err.Error())
	os.Exit(exitCodeFor(err))
}

// userError and driftError are sentinel wrappers for the two exit cases
// §6 names that no obs.Kind covers: a bad CLI argument, and validate
// finding fingerprint drift. Everything else is classified by obs.Kind.
type userError struct{ cause error }

func (e *userError) Error() string { return e.cause.Error() }
func (e *userError) Unwrap() error { return e.cause }

func newUserError(format string, args ...any) error {
	return &userError{cause: fmt.Errorf(format, args...)}
}

type driftError struct{ cause error }

func (e *driftError) Error() string { return e.cause.Error() }
func (e *driftError) Unwrap() error { return e.cause }

func newDriftError(format string, args ...any) error {
	return &driftError{cause: fmt.Errorf(format, args...)}
}

func exitCodeFor(err error) int {
	var ue *userError
	if errors.As(err, &ue) {
		return exitUserError
	}
	var de *driftError
	if errors.As(err, &de) {
		return exitDriftDetected
	}

	kind, ok := obs.KindOf(err)
	if !ok {
		return exitInfrastructure
	}
	switch kind {
	case obs.KindStrictModeViolation:
		return exitStrictViolation
	case obs.KindManifestInvalid, obs.KindManifestVersionTooNew, obs.KindNoMappingForPlatform:
		return exitUserError
	default:
		return exitInfrastructure
	}
}
