// Package depgraph builds the file and entity dependency graphs from
// extracted fact records. Graphs come out with sorted nodes and
// deduplicated edges so identical input always yields identical output.
package depgraph

import (
	"path"
	"sort"

	"github.com/sloplab/slop/pkg/models"
	"github.com/sloplab/slop/pkg/resolver"
)

// Builder constructs dependency graphs from fact records.
type Builder struct{}

// New creates a graph builder.
func New() *Builder {
	return &Builder{}
}

// Result holds both graphs plus the leftovers the graphs cannot carry:
// entity IDs targeted by module-level calls (used as extra reachability
// seeds, since import-time calls execute without a calling entity) and
// per-file diagnostics.
type Result struct {
	FileGraph         *models.DependencyGraph
	EntityGraph       *models.DependencyGraph
	ModuleCallTargets []string
	Diagnostics       []models.Diagnostic
}

type edgeKey struct {
	from string
	to   string
	kind models.EdgeKind
}

// Build assembles the graphs. Records are processed in path order
// regardless of input order; unresolved imports are counted per node and
// dropped from the edge set.
func (b *Builder) Build(records []models.FileRecord) *Result {
	recs := make([]models.FileRecord, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool { return recs[i].Path < recs[j].Path })

	paths := make([]string, len(recs))
	for i, r := range recs {
		paths[i] = r.Path
	}
	res := resolver.New(paths)

	result := &Result{
		FileGraph:   &models.DependencyGraph{},
		EntityGraph: &models.DependencyGraph{},
	}

	fileEdges := make(map[edgeKey][]uint32)
	unresolvedCounts := make(map[string]int)
	byPath := make(map[string]*models.FileRecord, len(recs))

	for i := range recs {
		rec := &recs[i]
		byPath[rec.Path] = rec

		result.FileGraph.Nodes = append(result.FileGraph.Nodes, models.GraphNode{
			ID:       rec.Path,
			Name:     path.Base(rec.Path),
			Type:     models.NodeFile,
			File:     rec.Path,
			Language: rec.Language,
			Lines:    rec.Lines,
			Unparsed: rec.Unparsed,
		})
		if rec.Unparsed {
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				File:    rec.Path,
				Stage:   "parse",
				Message: rec.ParseError,
			})
		}

		for _, ref := range rec.Imports() {
			target, ok := res.Resolve(rec.Path, ref.Target)
			if !ok {
				unresolvedCounts[rec.Path]++
				continue
			}
			key := edgeKey{from: rec.Path, to: target, kind: models.EdgeImport}
			fileEdges[key] = append(fileEdges[key], ref.Line)
		}
	}

	for i := range result.FileGraph.Nodes {
		result.FileGraph.Nodes[i].UnresolvedImports = unresolvedCounts[result.FileGraph.Nodes[i].ID]
	}
	result.FileGraph.Edges = flattenEdges(fileEdges)

	b.buildEntityGraph(recs, byPath, fileEdges, result)
	return result
}

// buildEntityGraph adds entity nodes and resolves call references.
// Visibility is same-file first, then entities of directly-imported files
// (one import hop); first match wins and self-edges are skipped.
func (b *Builder) buildEntityGraph(recs []models.FileRecord, byPath map[string]*models.FileRecord, fileEdges map[edgeKey][]uint32, result *Result) {
	for _, rec := range recs {
		for _, ent := range rec.Entities {
			nodeType := models.NodeFunction
			if ent.Kind == models.EntityClass {
				nodeType = models.NodeClass
			}
			result.EntityGraph.Nodes = append(result.EntityGraph.Nodes, models.GraphNode{
				ID:       ent.ID,
				Name:     ent.Name,
				Type:     nodeType,
				File:     rec.Path,
				Line:     ent.StartLine,
				Language: rec.Language,
				Lines:    int(ent.EndLine-ent.StartLine) + 1,
			})
		}
	}
	sort.Slice(result.EntityGraph.Nodes, func(i, j int) bool {
		return result.EntityGraph.Nodes[i].ID < result.EntityGraph.Nodes[j].ID
	})

	// Direct import targets per file, ordered by first evidence line so
	// one-hop call resolution is deterministic.
	importTargets := make(map[string][]string, len(recs))
	type targetEvidence struct {
		target string
		line   uint32
	}
	perFile := make(map[string][]targetEvidence)
	for key, lines := range fileEdges {
		first := lines[0]
		for _, l := range lines {
			if l < first {
				first = l
			}
		}
		perFile[key.from] = append(perFile[key.from], targetEvidence{target: key.to, line: first})
	}
	for from, targets := range perFile {
		sort.Slice(targets, func(i, j int) bool {
			if targets[i].line != targets[j].line {
				return targets[i].line < targets[j].line
			}
			return targets[i].target < targets[j].target
		})
		for _, te := range targets {
			importTargets[from] = append(importTargets[from], te.target)
		}
	}

	entityEdges := make(map[edgeKey][]uint32)
	moduleTargets := make(map[string]bool)

	for _, rec := range recs {
		for _, ref := range rec.Calls() {
			target := b.resolveCall(&rec, ref.Target, byPath, importTargets[rec.Path])
			if target == "" {
				continue
			}
			if ref.Entity == "" {
				moduleTargets[target] = true
				continue
			}
			if target == ref.Entity {
				continue
			}
			key := edgeKey{from: ref.Entity, to: target, kind: models.EdgeCall}
			entityEdges[key] = append(entityEdges[key], ref.Line)
		}
	}

	result.EntityGraph.Edges = flattenEdges(entityEdges)
	for id := range moduleTargets {
		result.ModuleCallTargets = append(result.ModuleCallTargets, id)
	}
	sort.Strings(result.ModuleCallTargets)
}

// resolveCall matches a call target name against visible entities:
// same-file declarations first, then declarations of directly-imported
// files in import order. Unmatched calls are dropped, most target
// library code outside the scanned tree.
func (b *Builder) resolveCall(rec *models.FileRecord, name string, byPath map[string]*models.FileRecord, imports []string) string {
	if id := matchEntity(rec, name); id != "" {
		return id
	}
	for _, imp := range imports {
		if target, ok := byPath[imp]; ok {
			if id := matchEntity(target, name); id != "" {
				return id
			}
		}
	}
	return ""
}

// matchEntity finds the first entity in declaration order whose simple or
// parent-qualified name equals the call target.
func matchEntity(rec *models.FileRecord, name string) string {
	for _, ent := range rec.Entities {
		if ent.Name == name {
			return ent.ID
		}
		if ent.Parent != "" && ent.Parent+"."+ent.Name == name {
			return ent.ID
		}
	}
	return ""
}

// flattenEdges converts the keyed map into a sorted edge list with sorted
// evidence lines. The keyed map makes duplicate (from, to, kind) edges
// impossible by construction.
func flattenEdges(edges map[edgeKey][]uint32) []models.GraphEdge {
	out := make([]models.GraphEdge, 0, len(edges))
	for key, lines := range edges {
		sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })
		// collapse duplicate evidence lines
		dedup := lines[:0]
		var prev uint32
		for i, l := range lines {
			if i == 0 || l != prev {
				dedup = append(dedup, l)
			}
			prev = l
		}
		out = append(out, models.GraphEdge{From: key.from, To: key.to, Kind: key.kind, Lines: dedup})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
