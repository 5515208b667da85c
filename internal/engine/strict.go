package engine

import (
	"fmt"
	"strings"

	"dht/internal/obs"
)

// FallbackDecision records whether a failure in non-strict mode may be
// downgraded to a warning and the run continued, or must still abort.
type FallbackDecision struct {
	Proceed bool
	Reason  string
}

// fallbackableKinds lists the error kinds non-strict mode may downgrade to
// a warning: a capability installed from an alternative package manager
// entry, or a dev tool that fell back to a slower but workable path.
// Everything else always aborts, strict or not.
var fallbackableKinds = map[obs.Kind]bool{
	obs.KindPackageManagerMissing:   true,
	obs.KindPackageIndexUnavailable: true,
	obs.KindTransientNetwork:        true,
}

// Decide evaluates one step failure against strict mode, mirroring the
// teacher's ValidationError accumulation shape (validate.go): collect
// every issue, classify by kind, and only refuse to proceed once the
// classification says so, generalized here from "collect config mistakes"
// to "decide whether one regeneration failure can be worked around".
func Decide(strict bool, err error) FallbackDecision {
	if strict {
		return FallbackDecision{Proceed: false, Reason: "strict mode: no fallback permitted"}
	}

	kind, ok := obs.KindOf(err)
	if !ok || !fallbackableKinds[kind] {
		return FallbackDecision{Proceed: false, Reason: fmt.Sprintf("%v is not a fallbackable failure", err)}
	}
	return FallbackDecision{Proceed: true, Reason: fmt.Sprintf("downgraded %s to a warning", kind)}
}

// Report accumulates the warnings produced by Decide-approved fallbacks
// across a whole run, for the final report (§7).
type Report struct {
	Warnings []string
}

func (r *Report) Add(step StepKind, reason string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", step, reason))
}

func (r *Report) String() string {
	if len(r.Warnings) == 0 {
		return ""
	}
	return strings.Join(r.Warnings, "\n")
}
