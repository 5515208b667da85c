package fingerprint

import "sort"

// RepairAction is one corrective step the Regeneration Engine can re-run to
// close a single discrepancy.
type RepairAction struct {
	Kind    DiffKind
	Package string
	Version string // target version for missing/version_mismatch; empty for extra
}

// Plan maps a diff to the minimal set of repair actions needed to
// eliminate it, in dependency-safe order (interpreter first, then
// packages, then capabilities) — the same "collect only what's needed,
// preserve dependency order" shape as the teacher's filterImages (build.go),
// generalized from "filter a build order down to requested images" to
// "filter a diff down to the actions that repair it".
func Plan(discrepancies []Discrepancy) []RepairAction {
	var interp, pkgs, caps []RepairAction

	for _, d := range discrepancies {
		action := RepairAction{Kind: d.Kind, Package: d.Package, Version: d.Expected}
		switch {
		case d.Package == "__interpreter__":
			interp = append(interp, action)
		case isCapabilityDiscrepancy(d.Package):
			caps = append(caps, action)
		default:
			pkgs = append(pkgs, action)
		}
	}

	sortByPackage(pkgs)
	sortByPackage(caps)

	out := make([]RepairAction, 0, len(interp)+len(pkgs)+len(caps))
	out = append(out, interp...)
	out = append(out, pkgs...)
	out = append(out, caps...)
	return out
}

func isCapabilityDiscrepancy(pkg string) bool {
	return len(pkg) > len("capability:") && pkg[:len("capability:")] == "capability:"
}

func sortByPackage(actions []RepairAction) {
	sort.Slice(actions, func(i, j int) bool { return actions[i].Package < actions[j].Package })
}
