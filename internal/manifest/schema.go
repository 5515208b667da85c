package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// schemaForVersion holds one JSON Schema document per schema_version this
// codec has ever shipped. Entries are never removed — a schema for an old
// version is still needed to validate documents written by an older engine
// before Migrate runs (§4.E full text).
var schemaForVersion = map[int]*jsonschema.Resolved{
	1: mustResolve(schemaV1),
}

const schemaV1 = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version"],
  "properties": {
    "schema_version": {"type": "integer", "minimum": 1},
    "engine": {
      "type": "object",
      "properties": {
        "min_version": {"type": "string"}
      }
    },
    "interpreter": {
      "type": "object",
      "properties": {
        "version": {"type": "string"},
        "implementation": {"type": "string"}
      }
    },
    "capabilities": {
      "type": "array",
      "items": {"type": "string"}
    },
    "capability_overrides": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "tools": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "hooks": {
      "type": "array",
      "items": {"type": "string"}
    },
    "fingerprint": {
      "type": "object",
      "properties": {
        "environment": {"type": "string"},
        "config": {"type": "string"}
      }
    },
    "strict": {"type": "boolean"}
  }
}`

func mustResolve(schemaText string) *jsonschema.Resolved {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(schemaText), &schema); err != nil {
		panic(fmt.Sprintf("manifest: invalid embedded schema: %v", err))
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("manifest: resolving embedded schema: %v", err))
	}
	return resolved
}

// ValidateSchema checks raw (the original document bytes) against the JSON
// Schema registered for version before any migration runs. A document that
// parses as valid YAML but violates its own declared version's schema fails
// here, never reaching Migrate (§4.E full text: "fails as ManifestInvalid
// before migration is attempted").
func ValidateSchema(version int, raw []byte) error {
	resolved, ok := schemaForVersion[version]
	if !ok {
		// An unknown schema_version is not this function's concern — Read
		// routes that case to Migrate, which produces ManifestVersionTooNew.
		return nil
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing document for schema validation: %w", err)
	}

	if err := resolved.Validate(jsonify(doc)); err != nil {
		return fmt.Errorf("document does not satisfy schema_version %d: %w", version, err)
	}
	return nil
}

// jsonify converts yaml.v3's decoded tree into the plain JSON-compatible
// shapes jsonschema.Resolved.Validate expects (map[string]any, []any,
// string, float64, bool, nil).
func jsonify(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonify(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonify(val)
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}
