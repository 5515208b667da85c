// Package manifest implements the Manifest Codec (§4.E): reading and
// writing .dhtconfig, the minimal, non-inferrable subset of the environment
// description.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dht/internal/obs"
)

// CurrentSchemaVersion is the newest schema_version this codec writes.
const CurrentSchemaVersion = 1

// Manifest is the .dhtconfig document (§3, §6). Field order here is the
// canonical write order — yaml.v3 marshals struct fields in declaration
// order, which is how the minimality/stable-key-order guarantee in §4.E is
// satisfied without a hand-rolled node tree.
type Manifest struct {
	SchemaVersion int `yaml:"schema_version"`

	Engine struct {
		MinVersion string `yaml:"min_version,omitempty"`
	} `yaml:"engine"`

	Interpreter struct {
		Version        string `yaml:"version,omitempty"`
		Implementation string `yaml:"implementation,omitempty"`
	} `yaml:"interpreter,omitempty"`

	Capabilities []string `yaml:"capabilities,omitempty"`

	CapabilityOverrides map[string]string `yaml:"capability_overrides,omitempty"`

	Tools map[string]string `yaml:"tools,omitempty"`

	// Hooks names the dev tools (already installed via Tools) whose git
	// hook integration should be installed, e.g. "pre-commit" (§4.I step 8).
	Hooks []string `yaml:"hooks,omitempty"`

	Fingerprint struct {
		Environment string `yaml:"environment,omitempty"`
		Config      string `yaml:"config,omitempty"`
	} `yaml:"fingerprint,omitempty"`

	Strict bool `yaml:"strict,omitempty"`

	// Unknown carries any key the codec doesn't recognize, preserved
	// verbatim on rewrite ("Unknown keys are preserved on rewrite", §6).
	Unknown map[string]yaml.Node `yaml:"-"`
}

// Read loads and validates a manifest file, running schema validation and
// version migration in that order (§4.E full text).
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, obs.New(obs.KindManifestInvalid, "manifest", "parse", err)
	}

	version, err := peekSchemaVersion(&root)
	if err != nil {
		return nil, obs.New(obs.KindManifestInvalid, "manifest", "parse", err)
	}

	if err := ValidateSchema(version, data); err != nil {
		return nil, obs.New(obs.KindManifestInvalid, "manifest", "schema-validate", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, obs.New(obs.KindManifestInvalid, "manifest", "unmarshal", err)
	}
	m.Unknown = collectUnknownKeys(&root)

	migrated, err := Migrate(&m, version)
	if err != nil {
		return nil, err
	}
	return migrated, nil
}

func peekSchemaVersion(root *yaml.Node) (int, error) {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "schema_version" {
			var v int
			if err := doc.Content[i+1].Decode(&v); err != nil {
				return 0, fmt.Errorf("decoding schema_version: %w", err)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("missing required field schema_version")
}

// knownKeys lists every field this struct recognizes, used to find unknown
// top-level keys to preserve on rewrite.
var knownKeys = map[string]bool{
	"schema_version": true, "engine": true, "interpreter": true,
	"capabilities": true, "capability_overrides": true, "tools": true,
	"hooks": true, "fingerprint": true, "strict": true,
}

func collectUnknownKeys(root *yaml.Node) map[string]yaml.Node {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	out := map[string]yaml.Node{}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if !knownKeys[key] {
			out[key] = *doc.Content[i+1]
		}
	}
	return out
}

// Write emits the canonical form: stable key order (struct declaration
// order), LF line endings, two-space indent, trailing newline. It refuses
// to write a field whose value equals the inferred value, per the
// minimality guarantee — callers must pass inferred so the codec can
// enforce that itself rather than trusting every caller to remember.
func Write(path string, m *Manifest, inferred *Manifest) error {
	minimal := stripInferred(*m, inferred)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(minimal); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}

	out := appendUnknownKeys(buf.Bytes(), m.Unknown)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	return os.WriteFile(path, out, 0644)
}

// stripInferred zeroes any field in m that equals the corresponding field
// in inferred, so the writer never persists a value Read() would have
// derived anyway (Testable Property 1: manifest minimality, §8).
func stripInferred(m Manifest, inferred *Manifest) Manifest {
	if inferred == nil {
		return m
	}
	if m.Interpreter.Version == inferred.Interpreter.Version {
		m.Interpreter.Version = ""
	}
	if m.Interpreter.Implementation == inferred.Interpreter.Implementation {
		m.Interpreter.Implementation = ""
	}

	var keptCaps []string
	inferredSet := map[string]bool{}
	for _, c := range inferred.Capabilities {
		inferredSet[c] = true
	}
	for _, c := range m.Capabilities {
		if !inferredSet[c] {
			keptCaps = append(keptCaps, c)
		}
	}
	m.Capabilities = keptCaps
	return m
}

func appendUnknownKeys(doc []byte, unknown map[string]yaml.Node) []byte {
	if len(unknown) == 0 {
		return doc
	}
	extra := map[string]yaml.Node{}
	for k, v := range unknown {
		extra[k] = v
	}
	extraBytes, err := yaml.Marshal(extra)
	if err != nil {
		return doc
	}
	return append(doc, extraBytes...)
}
