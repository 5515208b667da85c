package introspect

import "sort"

// CapabilitySource records provenance of one import→capability table row.
// §9 flags that the original tool's import→capability heuristic had unclear
// provenance; this implementation instead tags every row so a reviewer can
// tell a maintained, evidence-based mapping from a guess.
type CapabilitySource string

const (
	// SourceStdlibHeuristic rows are backed by a well-known C-extension
	// dependency relationship (e.g. psycopg2 always needs libpq).
	SourceStdlibHeuristic CapabilitySource = "stdlib-heuristic"
	// SourceDeclaredByManifest rows come from the manifest's own
	// capabilities[] list, not from import inference; they are unioned in
	// by CapabilityUnion, never placed in importCapabilityTable.
	SourceDeclaredByManifest CapabilitySource = "declared-by-manifest"
)

// importCapabilityRow is one entry in the canonical import→capability table
// (§4.D full text).
type importCapabilityRow struct {
	Import       string
	Capabilities []string
	Source       CapabilitySource
}

// importCapabilityTable maps an imported top-level Python package to the
// system capabilities it requires. This is data, not a heuristic computed
// at runtime (§9's "Global state ... process-wide constants" note).
var importCapabilityTable = []importCapabilityRow{
	{Import: "psycopg2", Capabilities: []string{"postgresql_client"}, Source: SourceStdlibHeuristic},
	{Import: "psycopg", Capabilities: []string{"postgresql_client"}, Source: SourceStdlibHeuristic},
	{Import: "MySQLdb", Capabilities: []string{"mysql_client"}, Source: SourceStdlibHeuristic},
	{Import: "mysqlclient", Capabilities: []string{"mysql_client"}, Source: SourceStdlibHeuristic},
	{Import: "PIL", Capabilities: []string{"image_codecs_jpeg", "image_codecs_png"}, Source: SourceStdlibHeuristic},
	{Import: "cryptography", Capabilities: []string{"ssl_toolkit"}, Source: SourceStdlibHeuristic},
	{Import: "lxml", Capabilities: []string{"xml_toolkit"}, Source: SourceStdlibHeuristic},
	{Import: "cffi", Capabilities: []string{"ffi_toolkit"}, Source: SourceStdlibHeuristic},
	{Import: "zlib", Capabilities: []string{"compression_zlib"}, Source: SourceStdlibHeuristic},
	{Import: "numpy", Capabilities: []string{"native_build_toolchain"}, Source: SourceStdlibHeuristic},
	{Import: "pandas", Capabilities: []string{"native_build_toolchain"}, Source: SourceStdlibHeuristic},
}

var importCapabilityIndex = buildImportCapabilityIndex()

func buildImportCapabilityIndex() map[string][]string {
	idx := make(map[string][]string, len(importCapabilityTable))
	for _, row := range importCapabilityTable {
		idx[row.Import] = row.Capabilities
	}
	return idx
}

// inferCapabilities maps a project's imports through the canonical table
// (§4.D). Capabilities inferable this way are never persisted back to the
// manifest — only CapabilityUnion's declared side is ever written (§4.E's
// minimality guarantee).
func inferCapabilities(imports []string) []string {
	seen := map[string]bool{}
	for _, imp := range imports {
		for _, cap := range importCapabilityIndex[imp] {
			seen[cap] = true
		}
	}
	out := make([]string, 0, len(seen))
	for cap := range seen {
		out = append(out, cap)
	}
	sort.Strings(out)
	return out
}

// CapabilityUnion unions inferred capabilities with those explicitly
// declared in the manifest (§4.D: "Capabilities already declared in the
// manifest are unioned in"). The declared set is never reduced by this
// call — a manifest's explicit declaration always survives, even if it
// duplicates something inference would have found anyway.
func CapabilityUnion(inferred, declared []string) []string {
	seen := map[string]bool{}
	for _, c := range inferred {
		seen[c] = true
	}
	for _, c := range declared {
		seen[c] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
