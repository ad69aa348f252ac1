// Package reach classifies graph nodes as reachable or dead. Files
// unreachable from any entry point are stranded; entities never called
// from reachable code are unused.
package reach

import (
	"path"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/models"
)

// Analyzer holds compiled entry-point matchers.
type Analyzer struct {
	matchers []entryMatcher
}

// Result is the reachability classification of one build.
type Result struct {
	// EntryFiles are file node IDs matched by an entry-point pattern,
	// sorted. Empty when traversal fell back to zero-in-degree roots.
	EntryFiles []string
	// StrandedFiles are parsed file node IDs unreachable from any
	// traversal root, sorted.
	StrandedFiles []string
	// UnusedEntities are entity node IDs declared in reachable files but
	// never called from reachable code, sorted.
	UnusedEntities []string

	reachableFiles    map[string]bool
	reachableEntities map[string]bool
}

// FileReachable reports whether a file node was visited.
func (r *Result) FileReachable(id string) bool { return r.reachableFiles[id] }

// EntityReachable reports whether an entity node was visited.
func (r *Result) EntityReachable(id string) bool { return r.reachableEntities[id] }

// New compiles entry-point patterns. A pattern matches a file when it
// equals the basename or the relative path, when it matches either as a
// path.Match glob, or when it occurs as a substring of the relative path.
func New(entryPoints []string) *Analyzer {
	a := &Analyzer{}
	for _, p := range entryPoints {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a.matchers = append(a.matchers, entryMatcher{
			pattern: p,
			isGlob:  strings.ContainsAny(p, "*?["),
		})
	}
	return a
}

type entryMatcher struct {
	pattern string
	isGlob  bool
}

func (m entryMatcher) matches(relPath string) bool {
	base := path.Base(relPath)
	if m.isGlob {
		if ok, err := path.Match(m.pattern, base); err == nil && ok {
			return true
		}
		ok, err := path.Match(m.pattern, relPath)
		return err == nil && ok
	}
	return base == m.pattern || relPath == m.pattern || strings.Contains(relPath, m.pattern)
}

// Analyze runs multi-source BFS over both graphs. Roots are the
// entry-matched files; when no entry pattern matches anything, every
// zero-in-degree file serves as a root instead so an unrecognized layout
// does not flag the whole tree. Entry points themselves are never
// flagged. Entity traversal seeds from the entities of root files plus
// targets of module-level calls, which run at import time without a
// calling entity.
func (a *Analyzer) Analyze(build *depgraph.Result) *Result {
	result := &Result{
		reachableFiles:    make(map[string]bool),
		reachableEntities: make(map[string]bool),
	}

	fileIdx := indexNodes(build.FileGraph)
	roots := roaring.New()
	for i, node := range build.FileGraph.Nodes {
		for _, m := range a.matchers {
			if m.matches(node.ID) {
				roots.Add(uint32(i))
				result.EntryFiles = append(result.EntryFiles, node.ID)
				break
			}
		}
	}

	if roots.IsEmpty() {
		for id, deg := range build.FileGraph.InDegrees() {
			if deg == 0 {
				roots.Add(fileIdx[id])
			}
		}
	}

	visited := bfs(build.FileGraph, fileIdx, roots)
	rootFiles := make(map[string]bool)
	it := roots.Iterator()
	for it.HasNext() {
		rootFiles[build.FileGraph.Nodes[it.Next()].ID] = true
	}
	for i, node := range build.FileGraph.Nodes {
		if visited.Contains(uint32(i)) {
			result.reachableFiles[node.ID] = true
		}
	}

	a.analyzeEntities(build, rootFiles, result)

	for _, node := range build.FileGraph.Nodes {
		if result.reachableFiles[node.ID] || node.Unparsed {
			continue
		}
		result.StrandedFiles = append(result.StrandedFiles, node.ID)
	}
	sort.Strings(result.StrandedFiles)
	sort.Strings(result.EntryFiles)
	return result
}

// analyzeEntities runs the entity-level BFS and derives unused entities.
// A reachable entity rescues its file from the stranded set: the file is
// in use even without an incoming import edge.
func (a *Analyzer) analyzeEntities(build *depgraph.Result, rootFiles map[string]bool, result *Result) {
	entityIdx := indexNodes(build.EntityGraph)
	seeds := roaring.New()
	for i, node := range build.EntityGraph.Nodes {
		if rootFiles[node.File] {
			seeds.Add(uint32(i))
		}
	}
	for _, id := range build.ModuleCallTargets {
		if i, ok := entityIdx[id]; ok {
			seeds.Add(i)
		}
	}

	visited := bfs(build.EntityGraph, entityIdx, seeds)
	for i, node := range build.EntityGraph.Nodes {
		if !visited.Contains(uint32(i)) {
			continue
		}
		result.reachableEntities[node.ID] = true
		result.reachableFiles[node.File] = true
	}

	for _, node := range build.EntityGraph.Nodes {
		if result.reachableEntities[node.ID] {
			continue
		}
		if !result.reachableFiles[node.File] && !rootFiles[node.File] {
			// covered by the stranded-file finding
			continue
		}
		if exemptName(node.Name) {
			continue
		}
		result.UnusedEntities = append(result.UnusedEntities, node.ID)
	}
	sort.Strings(result.UnusedEntities)
}

// bfs visits everything reachable from the seed set along edge direction.
func bfs(graph *models.DependencyGraph, idx map[string]uint32, seeds *roaring.Bitmap) *roaring.Bitmap {
	succ := graph.Successors()
	visited := seeds.Clone()
	var queue []string
	it := seeds.Iterator()
	for it.HasNext() {
		queue = append(queue, graph.Nodes[it.Next()].ID)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range succ[cur] {
			i, ok := idx[next]
			if !ok || visited.Contains(i) {
				continue
			}
			visited.Add(i)
			queue = append(queue, next)
		}
	}
	return visited
}

func indexNodes(graph *models.DependencyGraph) map[string]uint32 {
	idx := make(map[string]uint32, len(graph.Nodes))
	for i, node := range graph.Nodes {
		idx[node.ID] = uint32(i)
	}
	return idx
}

// specialNames are entities invoked by frameworks or runtimes rather
// than in-tree code. Flagging these would be pure noise.
var specialNames = map[string]bool{
	"main":                 true,
	"init":                 true,
	"setup":                true,
	"teardown":             true,
	"setUp":                true,
	"tearDown":             true,
	"constructor":          true,
	"render":               true,
	"componentDidMount":    true,
	"componentWillUnmount": true,
}

func exemptName(name string) bool {
	if name == "" || specialNames[name] {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	if strings.HasPrefix(name, "test_") || strings.HasPrefix(name, "Test") {
		return true
	}
	return false
}
