package models

import (
	"sort"
	"strings"
)

// NodeType represents the type of graph node.
type NodeType string

const (
	NodeFile     NodeType = "file"
	NodeFunction NodeType = "function"
	NodeClass    NodeType = "class"
)

// EdgeKind represents the kind of dependency an edge carries.
type EdgeKind string

const (
	EdgeImport EdgeKind = "import"
	EdgeCall   EdgeKind = "call"
)

// GraphNode is a node in the file or entity graph. For file nodes ID is the
// root-relative path; for entity nodes ID is the qualified entity identity.
type GraphNode struct {
	ID                string   `json:"id" toon:"id"`
	Name              string   `json:"name" toon:"name"`
	Type              NodeType `json:"type" toon:"type"`
	File              string   `json:"file" toon:"file"`
	Line              uint32   `json:"line,omitempty" toon:"line,omitempty"`
	Language          string   `json:"language,omitempty" toon:"language,omitempty"`
	Lines             int      `json:"lines,omitempty" toon:"lines,omitempty"`
	Unparsed          bool     `json:"unparsed,omitempty" toon:"unparsed,omitempty"`
	UnresolvedImports int      `json:"unresolved_imports,omitempty" toon:"unresolved_imports,omitempty"`
}

// GraphEdge is a deduplicated dependency edge. Lines holds the source lines
// of every reference that collapsed into this edge, sorted ascending.
type GraphEdge struct {
	From  string   `json:"from" toon:"from"`
	To    string   `json:"to" toon:"to"`
	Kind  EdgeKind `json:"kind" toon:"kind"`
	Lines []uint32 `json:"lines,omitempty" toon:"lines,omitempty"`
}

// DependencyGraph is a directed graph with deduplicated edges. Nodes are
// sorted by ID and edges by (from, to, kind) so repeated runs over the same
// input produce identical output.
type DependencyGraph struct {
	Nodes []GraphNode `json:"nodes" toon:"nodes"`
	Edges []GraphEdge `json:"edges" toon:"edges"`
}

// NodeByID returns the node with the given ID, or nil.
func (g *DependencyGraph) NodeByID(id string) *GraphNode {
	i := sort.Search(len(g.Nodes), func(i int) bool { return g.Nodes[i].ID >= id })
	if i < len(g.Nodes) && g.Nodes[i].ID == id {
		return &g.Nodes[i]
	}
	return nil
}

// Successors returns the IDs each node points at, built from the edge list.
func (g *DependencyGraph) Successors() map[string][]string {
	succ := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		succ[e.From] = append(succ[e.From], e.To)
	}
	return succ
}

// InDegrees returns the number of incoming edges per node ID. Nodes with no
// incoming edges are present with a zero count.
func (g *DependencyGraph) InDegrees() map[string]int {
	in := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		in[n.ID] = 0
	}
	for _, e := range g.Edges {
		in[e.To]++
	}
	return in
}

// ToMermaid renders the graph as a Mermaid diagram. Nodes whose IDs appear
// in highlight are drawn with a warning class.
func (g *DependencyGraph) ToMermaid(highlight map[string]bool) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, node := range g.Nodes {
		label := node.Name
		if label == "" {
			label = node.ID
		}
		b.WriteString("    " + SanitizeMermaidID(node.ID) + "[\"" + EscapeMermaidLabel(label) + "\"]\n")
	}
	for _, edge := range g.Edges {
		arrow := "-->"
		if edge.Kind == EdgeCall {
			arrow = "-->|calls|"
		}
		b.WriteString("    " + SanitizeMermaidID(edge.From) + " " + arrow + " " + SanitizeMermaidID(edge.To) + "\n")
	}
	if len(highlight) > 0 {
		ids := make([]string, 0, len(highlight))
		for id := range highlight {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b.WriteString("    classDef flagged fill:#f96,stroke:#333\n")
		for _, id := range ids {
			b.WriteString("    class " + SanitizeMermaidID(id) + " flagged\n")
		}
	}
	return b.String()
}

// SanitizeMermaidID makes an ID safe for Mermaid node references.
func SanitizeMermaidID(id string) string {
	var b strings.Builder
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// EscapeMermaidLabel escapes characters that break Mermaid labels.
func EscapeMermaidLabel(label string) string {
	label = strings.ReplaceAll(label, "\"", "#quot;")
	label = strings.ReplaceAll(label, "[", "#91;")
	label = strings.ReplaceAll(label, "]", "#93;")
	return label
}
