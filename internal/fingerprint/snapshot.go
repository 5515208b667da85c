// Package fingerprint implements the Environment Validator (§4.J): taking a
// canonical snapshot of an environment's installed state, diffing it
// against the manifest's expectation, and computing minimal repairs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os/exec"
	"sort"
	"strings"
)

// EnvironmentSnapshot is the canonicalized, order-independent record of
// what is actually installed, extracted the same way the teacher extracts
// ImageMetadata from OCI labels (labels.go's ExtractMetadata), generalized
// here from "read org.overthink.* labels off a container image" to "read
// installed-package state out of a Python environment".
type EnvironmentSnapshot struct {
	InterpreterVersion string            `json:"interpreter_version"`
	Packages           []PackageRecord   `json:"packages"`
	Capabilities       []string          `json:"capabilities"`
	ConfigDigest       string            `json:"config_digest"`
}

// PackageRecord is one installed distribution, as pip/uv report it.
type PackageRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// pipFreezeFn is a package-level var so tests can substitute a fixture
// instead of shelling out, matching the teacher's InspectLabels
// package-level-var-for-testability pattern (labels.go).
var pipFreezeFn = defaultPipFreeze

func defaultPipFreeze(pythonBin string) ([]PackageRecord, error) {
	out, err := exec.Command(pythonBin, "-m", "pip", "list", "--format=json").Output()
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, err
	}
	records := make([]PackageRecord, len(raw))
	for i, r := range raw {
		records[i] = PackageRecord{Name: strings.ToLower(r.Name), Version: r.Version}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Capture takes a snapshot of the environment whose python is at pythonBin.
func Capture(pythonBin string, capabilities []string, interpreterVersion, configDigest string) (*EnvironmentSnapshot, error) {
	packages, err := pipFreezeFn(pythonBin)
	if err != nil {
		return nil, err
	}
	sortedCaps := append([]string{}, capabilities...)
	sort.Strings(sortedCaps)
	return &EnvironmentSnapshot{
		InterpreterVersion: interpreterVersion,
		Packages:           packages,
		Capabilities:       sortedCaps,
		ConfigDigest:       configDigest,
	}, nil
}

// Digest returns a stable content hash over the snapshot's canonical form,
// so two snapshots of a byte-identical environment always hash equal
// regardless of the order packages happened to be reported in.
func Digest(s *EnvironmentSnapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
