// Package capability implements the Capability Registry (§4.B): a static,
// versioned table mapping semantic capability ids to platform-specific
// package identifiers, loaded once at process startup and never mutated.
package capability

import (
	"dht/internal/obs"
	"dht/internal/platform"
)

// Capability is the immutable, process-wide semantic handle (§3).
type Capability struct {
	ID          string
	Category    string
	Description string
}

// PlatformKey partially orders family/distribution/version/arch for
// longest-prefix matching, per §3.
type PlatformKey struct {
	Family           platform.Family
	Distribution     string // "" matches any distribution within Family
	VersionRange     string // "" matches any version
	Arch             platform.Arch // "" (ArchOther zero value unused as wildcard marker)
}

// specificity counts how many of the four fields are pinned, used to rank
// candidate mappings by longest-prefix match.
func (k PlatformKey) specificity() int {
	n := 0
	if k.Family != "" {
		n++
	}
	if k.Distribution != "" {
		n++
	}
	if k.VersionRange != "" {
		n++
	}
	if k.Arch != "" {
		n++
	}
	return n
}

// matches reports whether k (a mapping's declared key, possibly partial)
// applies to target (a concrete probed platform).
func (k PlatformKey) matches(target PlatformKey) bool {
	if k.Family != "" && k.Family != target.Family {
		return false
	}
	if k.Distribution != "" && k.Distribution != target.Distribution {
		return false
	}
	if k.Arch != "" && k.Arch != target.Arch {
		return false
	}
	if k.VersionRange != "" && !versionInRange(target.VersionRange, k.VersionRange) {
		return false
	}
	return true
}

// PostInstallStep is either a shell command or a behavioral self-test
// (§4.B full text); exactly one of Command or SelfTest is set.
type PostInstallStep struct {
	Command  []string
	SelfTest string // name of a registered selftest, see selftest.go
}

// PlatformMapping binds one capability to one platform key (§3).
type PlatformMapping struct {
	CapabilityID     string
	Key              PlatformKey
	ManagerID        string
	PackageName      string
	PostInstallSteps []PostInstallStep
	Alternatives     []string // other installable packages (e.g. a pip wheel) that satisfy the same need
}

// Registry is the loaded, queryable table.
type Registry struct {
	capabilities map[string]Capability
	mappings     []PlatformMapping // declaration order, for tie-breaks
}

// NewRegistry loads the bundled static table. It is built once at startup
// and treated as an immutable process-wide constant thereafter (§9).
func NewRegistry() *Registry {
	r := &Registry{capabilities: map[string]Capability{}}
	for _, c := range bundledCapabilities {
		r.capabilities[c.ID] = c
	}
	r.mappings = append(r.mappings, bundledMappings...)
	return r
}

// Lookup finds the best-matching PlatformMapping for (capabilityID, target)
// by longest-prefix match on PlatformKey, ties broken by declaration order.
// A capability with no mapping for the current platform is a first-class
// error (NoMappingForPlatform), per §4.B.
func (r *Registry) Lookup(capabilityID string, target PlatformKey) (*PlatformMapping, error) {
	if _, ok := r.capabilities[capabilityID]; !ok {
		return nil, obs.New(obs.KindNoMappingForPlatform, "capability", "lookup",
			errUnknownCapability(capabilityID))
	}

	var best *PlatformMapping
	bestSpecificity := -1
	for i := range r.mappings {
		m := &r.mappings[i]
		if m.CapabilityID != capabilityID {
			continue
		}
		if !m.Key.matches(target) {
			continue
		}
		if s := m.Key.specificity(); s > bestSpecificity {
			best = m
			bestSpecificity = s
		}
	}
	if best == nil {
		return nil, obs.New(obs.KindNoMappingForPlatform, "capability", "lookup",
			errNoMapping(capabilityID, target))
	}
	return best, nil
}

// Capabilities returns every registered capability, for coverage tests
// (Testable Property 4).
func (r *Registry) Capabilities() []Capability {
	out := make([]Capability, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		out = append(out, c)
	}
	return out
}

// MappingsFor returns every declared mapping for a capability, across all
// platforms — used by coverage tests to assert a mapping or an explicit
// exclusion exists for every supported platform key.
func (r *Registry) MappingsFor(capabilityID string) []PlatformMapping {
	var out []PlatformMapping
	for _, m := range r.mappings {
		if m.CapabilityID == capabilityID {
			out = append(out, m)
		}
	}
	return out
}
