package manifest

import (
	"fmt"

	"dht/internal/obs"
)

// migrationStep upgrades a manifest parsed at fromVersion in place to
// fromVersion+1. Steps are applied in sequence from the document's declared
// version up to CurrentSchemaVersion, so a document several minor versions
// behind migrates through every intermediate shape (§4.E: "forward
// compatible: a manifest written by an older engine must still load").
type migrationStep func(m *Manifest)

var migrationSteps = map[int]migrationStep{
	// No steps yet: CurrentSchemaVersion is 1, and schema_version 1 is the
	// oldest shape this codec has ever written. The next migration step
	// (1 -> 2) is added here the day schema_version 2 ships.
}

// Migrate upgrades m, which was parsed with its schema_version field equal
// to version, to CurrentSchemaVersion. A document whose major version is
// newer than this binary understands fails as ManifestVersionTooNew rather
// than being silently truncated (§7).
func Migrate(m *Manifest, version int) (*Manifest, error) {
	if version > CurrentSchemaVersion {
		return nil, obs.New(obs.KindManifestVersionTooNew, "manifest", "migrate",
			fmt.Errorf("manifest schema_version %d is newer than the %d this build understands", version, CurrentSchemaVersion))
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		step, ok := migrationSteps[v]
		if !ok {
			return nil, obs.New(obs.KindManifestInvalid, "manifest", "migrate",
				fmt.Errorf("no migration registered from schema_version %d", v))
		}
		step(m)
	}
	m.SchemaVersion = CurrentSchemaVersion
	return m, nil
}
