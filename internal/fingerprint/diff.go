package fingerprint

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
)

// DiffKind classifies one fingerprint discrepancy, per §7/§8's typed-diff
// requirement, mirroring the teacher's ValidationError/CycleError typed
// error-collection pattern (validate.go) generalized from "configuration
// mistakes" to "drift between the manifest's expectation and reality".
type DiffKind string

const (
	DiffMissing         DiffKind = "missing"
	DiffExtra           DiffKind = "extra"
	DiffVersionMismatch DiffKind = "version_mismatch"
	DiffHashMismatch    DiffKind = "hash_mismatch"
)

// Discrepancy is one field-level difference between an expected and
// observed EnvironmentSnapshot.
type Discrepancy struct {
	Kind     DiffKind
	Package  string
	Expected string
	Observed string
}

// Expectation is what the manifest (plus its resolved lockfile) says the
// environment should contain.
type Expectation struct {
	InterpreterVersion string
	Packages           map[string]string // name -> expected version
	Capabilities       []string
}

// Diff compares observed against want, returning every discrepancy sorted
// by package name for deterministic output.
func Diff(want Expectation, observed *EnvironmentSnapshot) []Discrepancy {
	var out []Discrepancy

	if want.InterpreterVersion != "" && want.InterpreterVersion != observed.InterpreterVersion {
		out = append(out, Discrepancy{
			Kind:     DiffVersionMismatch,
			Package:  "__interpreter__",
			Expected: want.InterpreterVersion,
			Observed: observed.InterpreterVersion,
		})
	}

	observedVersions := make(map[string]string, len(observed.Packages))
	for _, p := range observed.Packages {
		observedVersions[p.Name] = p.Version
	}

	for name, wantVersion := range want.Packages {
		gotVersion, present := observedVersions[name]
		switch {
		case !present:
			out = append(out, Discrepancy{Kind: DiffMissing, Package: name, Expected: wantVersion})
		case gotVersion != wantVersion:
			out = append(out, Discrepancy{Kind: DiffVersionMismatch, Package: name, Expected: wantVersion, Observed: gotVersion})
		}
	}
	for name, gotVersion := range observedVersions {
		if _, expected := want.Packages[name]; !expected {
			out = append(out, Discrepancy{Kind: DiffExtra, Package: name, Observed: gotVersion})
		}
	}

	if !cmp.Equal(sortedStrings(want.Capabilities), sortedStrings(observed.Capabilities)) {
		out = append(out, capabilityDiscrepancies(want.Capabilities, observed.Capabilities)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func capabilityDiscrepancies(want, observed []string) []Discrepancy {
	observedSet := make(map[string]bool, len(observed))
	for _, c := range observed {
		observedSet[c] = true
	}
	wantSet := make(map[string]bool, len(want))
	for _, c := range want {
		wantSet[c] = true
	}

	var out []Discrepancy
	for _, c := range want {
		if !observedSet[c] {
			out = append(out, Discrepancy{Kind: DiffMissing, Package: fmt.Sprintf("capability:%s", c)})
		}
	}
	for _, c := range observed {
		if !wantSet[c] {
			out = append(out, Discrepancy{Kind: DiffExtra, Package: fmt.Sprintf("capability:%s", c)})
		}
	}
	return out
}

func sortedStrings(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
