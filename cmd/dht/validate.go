package main

import (
	"context"
	"fmt"
	"os"

	"dht/internal/fingerprint"
)

// ValidateCmd checks the environment against its recorded fingerprint and
// reports drift, per §6: exit 3 on any discrepancy, without repairing
// anything — that is Fix's job.
type ValidateCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Project directory"`
}

func (c *ValidateCmd) Run() error {
	ctx := context.Background()

	r, err := resolveRoot(ctx, c.Dir, false)
	if err != nil {
		return err
	}
	if err := r.loadManifest(); err != nil {
		return err
	}

	discrepancies, err := diffAgainstManifest(r)
	if err != nil {
		return err
	}

	if len(discrepancies) == 0 {
		fmt.Fprintf(os.Stdout, "%s matches its recorded fingerprint\n", r.Dir)
		return nil
	}

	for _, d := range discrepancies {
		fmt.Fprintf(os.Stderr, "%s: %s expected=%q observed=%q\n", d.Kind, d.Package, d.Expected, d.Observed)
	}
	return newDriftError("%d discrepancies found in %s", len(discrepancies), r.Dir)
}

// diffAgainstManifest captures the environment's current state and diffs
// it against what the manifest plus its lockfile expect, shared by
// validate and fix.
func diffAgainstManifest(r *root) ([]fingerprint.Discrepancy, error) {
	lock, err := loadLockFile(r.Dir)
	if err != nil {
		return nil, err
	}

	observedInterpreter, err := probeInterpreterVersion(r.PythonBin)
	if err != nil {
		return nil, fmt.Errorf("probing current environment: %w", err)
	}

	snapshot, err := fingerprint.Capture(r.PythonBin, r.Manifest.Capabilities, observedInterpreter, r.Profile.InputsDigest)
	if err != nil {
		return nil, fmt.Errorf("capturing environment snapshot: %w", err)
	}

	want := buildExpectation(r.Manifest, r.Profile, lockedVersions(lock))
	return fingerprint.Diff(want, snapshot), nil
}
