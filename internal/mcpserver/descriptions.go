package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to interpret results.

func describeAnalyzeProject() string {
	return `Runs the full slop analysis pipeline over a project: dead code, circular imports, duplicated blocks, unused imports, comment markers, and structural checks, aggregated into one canonical issue list.

USE WHEN:
- Getting an overall picture of accumulated slop in a codebase
- Auditing a project after heavy generation or rapid prototyping
- Prioritizing cleanup work across categories

INTERPRETING RESULTS:
- Issues sorted by severity (error > warning > info), then file and line
- error: stranded files and circular import chains, fix these first
- warning: unused entities, duplicated blocks, unparsed files, FIXME/BUG markers
- info: unused imports, TODO/HACK markers, oversized or handler-heavy functions
- Annotations give a per-file severity rollup for graph coloring
- Diagnostics list files that could not be parsed (analysis degraded, not failed)

RETURNED:
- issues: node, category, severity, message, evidence locations
- summary: counts by severity and category
- annotations: per-node max severity, categories, issue count`
}

func describeFindDeadCode() string {
	return `Finds files unreachable from any entry point and entities that are never called from reachable code.

USE WHEN:
- Cleaning up after feature removal or refactoring
- Verifying that generated or copied modules are actually wired in
- Shrinking a codebase before a rewrite

INTERPRETING RESULTS:
- stranded_files: no import path from any entry point reaches them; deleting one never breaks reachable code
- unused_entities: declared in reachable files but never called; IDs are path::Parent.name
- Entry points come from configuration (main.py, index.js, and friends by default); pass entry_points to override
- Names like main, init, test_* and _-prefixed are exempt from unused reporting
- Dynamic dispatch and reflection are invisible to static analysis, verify before deleting

RETURNED:
- entry_files, stranded_files, unused_entities, all sorted`
}

func describeFindDuplicates() string {
	return `Detects blocks of code duplicated across a project using normalized line comparison.

USE WHEN:
- Locating copy-paste propagation after generation or fast iteration
- Choosing what to extract into shared helpers
- Measuring duplication hotspots per file

INTERPRETING RESULTS:
- Whitespace differences are ignored; comment and blank lines never count
- length is the normalized line count of the duplicated block after greedy extension
- Each cluster carries a stable fingerprint; IDs persist across runs for tracking
- hotspots rank files by duplicated lines

RETURNED:
- clusters: id, fingerprint, length, spans (file, start_line, end_line)
- summary: total clusters, spans, duplicated lines, hotspots`
}

func describeDependencyGraph() string {
	return `Builds the file dependency graph: which files import which, with call edges between entities, plus optional PageRank metrics and circular import detection.

USE WHEN:
- Understanding the import structure of an unfamiliar project
- Finding tightly coupled clusters and load-bearing files
- Rendering an architecture diagram (mermaid output)

INTERPRETING RESULTS:
- Nodes are root-relative file paths; edges carry the source lines of the import
- cycles list circular import chains; members is the full strongly connected component, path is one shortest representative loop
- High PageRank marks files many others depend on, directly or transitively
- isolated counts files with no edges at all

RETURNED:
- graph: nodes and edges; mermaid: diagram source when requested
- cycles: members and representative path per cycle
- stats: node/edge/component counts and top files by PageRank`
}
