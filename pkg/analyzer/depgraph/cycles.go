package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/sloplab/slop/pkg/models"
)

// Cycle is one circular-dependency finding: the full strongly connected
// component as evidence plus one representative cycle path. Path starts at
// the lexicographically smallest member and is the shortest cycle through
// it, so repeated runs report the same chain.
type Cycle struct {
	Members []string `json:"members" toon:"members"`
	Path    []string `json:"path" toon:"path"`
}

// DetectCycles finds circular dependencies among import edges. An SCC of
// size >= 2 qualifies, as does a single node importing itself.
func (b *Builder) DetectCycles(graph *models.DependencyGraph) []Cycle {
	if len(graph.Nodes) == 0 {
		return nil
	}

	succ := importSuccessors(graph)

	var cycles []Cycle

	// Self-loops first: gonum simple graphs cannot represent them.
	selfLoops := make(map[string]bool)
	for _, e := range graph.Edges {
		if e.Kind == models.EdgeImport && e.From == e.To {
			selfLoops[e.From] = true
		}
	}

	g := toGonum(graph)
	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, len(scc))
		for i, n := range scc {
			members[i] = g.idToNodeID[n.ID()]
		}
		sort.Strings(members)
		cycles = append(cycles, Cycle{
			Members: members,
			Path:    representativeCycle(members, succ),
		})
	}

	for id := range selfLoops {
		cycles = append(cycles, Cycle{Members: []string{id}, Path: []string{id}})
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Members[0] < cycles[j].Members[0] })
	return cycles
}

// importSuccessors builds sorted adjacency over import edges only.
func importSuccessors(graph *models.DependencyGraph) map[string][]string {
	succ := make(map[string][]string)
	for _, e := range graph.Edges {
		if e.Kind == models.EdgeImport {
			succ[e.From] = append(succ[e.From], e.To)
		}
	}
	for from := range succ {
		sort.Strings(succ[from])
	}
	return succ
}

// representativeCycle finds the shortest cycle through the smallest SCC
// member by BFS restricted to the component. Neighbors are visited in
// sorted order so path ties break the same way every run.
func representativeCycle(members []string, succ map[string][]string) []string {
	if len(members) == 1 {
		return []string{members[0]}
	}
	inSCC := make(map[string]bool, len(members))
	for _, m := range members {
		inSCC[m] = true
	}
	start := members[0]

	parent := make(map[string]string)
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range succ[u] {
			if !inSCC[v] {
				continue
			}
			if v == start {
				// Cycle closed: reconstruct start..u.
				var path []string
				for n := u; n != ""; n = parent[n] {
					path = append(path, n)
					if n == start {
						break
					}
				}
				// reverse into start-first order
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			if !visited[v] {
				visited[v] = true
				parent[v] = u
				queue = append(queue, v)
			}
		}
	}
	// SCC membership guarantees a cycle exists; unreachable.
	return members
}

type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nodeIDToID map[string]int64
	idToNodeID map[int64]string
}

// toGonum converts a DependencyGraph to gonum graph types. Self-loops are
// skipped; simple graphs do not support them.
func toGonum(graph *models.DependencyGraph) *gonumGraph {
	g := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nodeIDToID: make(map[string]int64),
		idToNodeID: make(map[int64]string),
	}

	for i, node := range graph.Nodes {
		id := int64(i)
		g.nodeIDToID[node.ID] = id
		g.idToNodeID[id] = node.ID
		g.directed.AddNode(simple.Node(id))
		g.undirected.AddNode(simple.Node(id))
	}

	for _, edge := range graph.Edges {
		fromID, fromOK := g.nodeIDToID[edge.From]
		toID, toOK := g.nodeIDToID[edge.To]
		if fromOK && toOK && fromID != toID {
			g.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
			if !g.undirected.HasEdgeBetween(fromID, toID) {
				g.undirected.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
			}
		}
	}

	return g
}
