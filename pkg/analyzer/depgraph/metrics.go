package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/sloplab/slop/pkg/models"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// NodeMetrics carries per-node centrality numbers for graph statistics.
type NodeMetrics struct {
	ID       string  `json:"id" toon:"id"`
	In       int     `json:"in" toon:"in"`
	Out      int     `json:"out" toon:"out"`
	PageRank float64 `json:"pagerank" toon:"pagerank"`
}

// GraphStats summarizes a dependency graph for the graph --stats view.
type GraphStats struct {
	Nodes      int           `json:"nodes" toon:"nodes"`
	Edges      int           `json:"edges" toon:"edges"`
	Components int           `json:"components" toon:"components"`
	Isolated   int           `json:"isolated" toon:"isolated"`
	TopNodes   []NodeMetrics `json:"top_nodes" toon:"top_nodes"`
}

// Stats computes size, connectivity and PageRank centrality for a graph.
// TopNodes holds up to limit nodes ordered by descending PageRank, ties
// broken by ID.
func Stats(graph *models.DependencyGraph, limit int) GraphStats {
	stats := GraphStats{
		Nodes: len(graph.Nodes),
		Edges: len(graph.Edges),
	}
	if len(graph.Nodes) == 0 {
		return stats
	}

	g := toGonum(graph)
	stats.Components = len(topo.ConnectedComponents(g.undirected))

	ranks := network.PageRank(g.directed, pageRankDamping, pageRankTolerance)

	in := make(map[string]int, len(graph.Nodes))
	out := make(map[string]int, len(graph.Nodes))
	for _, e := range graph.Edges {
		out[e.From]++
		in[e.To]++
	}

	metrics := make([]NodeMetrics, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		m := NodeMetrics{
			ID:  node.ID,
			In:  in[node.ID],
			Out: out[node.ID],
		}
		if id, ok := g.nodeIDToID[node.ID]; ok {
			m.PageRank = ranks[id]
		}
		if m.In == 0 && m.Out == 0 {
			stats.Isolated++
		}
		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].PageRank != metrics[j].PageRank {
			return metrics[i].PageRank > metrics[j].PageRank
		}
		return metrics[i].ID < metrics[j].ID
	})
	if limit > 0 && len(metrics) > limit {
		metrics = metrics[:limit]
	}
	stats.TopNodes = metrics

	return stats
}
