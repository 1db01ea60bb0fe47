// Package graph assembles URN declarations and manifest relationships into
// a directed traceability graph, with subgraph extraction, family
// filtering, and JSON/DOT export.
package graph

import (
	"strings"
)

// EdgeType classifies the relationship an edge asserts.
type EdgeType string

const (
	EdgeContains   EdgeType = "contains"   // parent-child containment (wagon contains feature)
	EdgeProduces   EdgeType = "produces"   // wagon produces contract/telemetry
	EdgeConsumes   EdgeType = "consumes"   // wagon consumes contract/telemetry
	EdgeImplements EdgeType = "implements" // component implements feature
	EdgeReferences EdgeType = "references" // general reference
	EdgeParentOf   EdgeType = "parent_of"  // train is parent of wagons (many-to-many)
)

// Node is a URN-identified artifact in the graph.
type Node struct {
	URN          string            `json:"urn"`
	Family       string            `json:"family"`
	ArtifactPath string            `json:"artifact_path,omitempty"`
	Label        string            `json:"label,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DisplayLabel is the node's label, defaulting to the URN's last segment.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	if i := strings.LastIndexByte(n.URN, ':'); i >= 0 {
		return n.URN[i+1:]
	}
	return n.URN
}

// Edge is a typed, directed relationship between two URNs.
type Edge struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Type     EdgeType          `json:"type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Graph holds nodes indexed by URN and edges indexed both ways. A graph
// built with allowed families silently drops edges whose endpoints fall
// outside the set.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	bySource map[string][]Edge
	byTarget map[string][]Edge
	allowed  map[string]bool // nil means all families
}

// New creates an empty graph. When families is non-empty only edges whose
// endpoint families are all listed are accepted.
func New(families ...string) *Graph {
	g := &Graph{
		nodes:    make(map[string]*Node),
		bySource: make(map[string][]Edge),
		byTarget: make(map[string][]Edge),
	}
	if len(families) > 0 {
		g.allowed = make(map[string]bool, len(families))
		for _, f := range families {
			g.allowed[f] = true
		}
	}
	return g
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *Node) {
	g.nodes[n.URN] = n
}

// AddEdge inserts an edge, creating stub nodes for endpoints that do not
// exist yet so that every edge's source and target are always present.
// Returns false when family filtering rejects the edge.
func (g *Graph) AddEdge(e Edge) bool {
	srcFamily := inferFamily(e.Source)
	dstFamily := inferFamily(e.Target)

	if g.allowed != nil && (!g.allowed[srcFamily] || !g.allowed[dstFamily]) {
		return false
	}

	if _, ok := g.nodes[e.Source]; !ok {
		g.nodes[e.Source] = &Node{URN: e.Source, Family: srcFamily}
	}
	if _, ok := g.nodes[e.Target]; !ok {
		g.nodes[e.Target] = &Node{URN: e.Target, Family: dstFamily}
	}

	g.edges = append(g.edges, e)
	g.bySource[e.Source] = append(g.bySource[e.Source], e)
	g.byTarget[e.Target] = append(g.byTarget[e.Target], e)
	return true
}

func inferFamily(urn string) string {
	if i := strings.IndexByte(urn, ':'); i > 0 {
		return urn[:i]
	}
	return "unknown"
}

// Node returns the node for a URN, or nil.
func (g *Graph) Node(urn string) *Node {
	return g.nodes[urn]
}

// Nodes returns all nodes indexed by URN. The map is shared; callers must
// not mutate it.
func (g *Graph) Nodes() map[string]*Node {
	return g.nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Outgoing returns edges originating from a URN.
func (g *Graph) Outgoing(urn string) []Edge {
	return g.bySource[urn]
}

// Incoming returns edges targeting a URN.
func (g *Graph) Incoming(urn string) []Edge {
	return g.byTarget[urn]
}

// Children returns target nodes of outgoing edges, optionally restricted
// to one edge type ("" means any).
func (g *Graph) Children(urn string, t EdgeType) []*Node {
	var out []*Node
	for _, e := range g.bySource[urn] {
		if t != "" && e.Type != t {
			continue
		}
		if n, ok := g.nodes[e.Target]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Parents returns source nodes of incoming edges, optionally restricted
// to one edge type ("" means any).
func (g *Graph) Parents(urn string, t EdgeType) []*Node {
	var out []*Node
	for _, e := range g.byTarget[urn] {
		if t != "" && e.Type != t {
			continue
		}
		if n, ok := g.nodes[e.Source]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Subgraph extracts the portion of the graph reachable from root via
// outgoing edges, breadth-first. maxDepth bounds traversal: -1 is
// unlimited and 0 yields only the root node with no edges. Traversal is
// cycle-safe.
func (g *Graph) Subgraph(root string, maxDepth int) *Graph {
	sub := New()
	type item struct {
		urn   string
		depth int
	}
	visited := map[string]bool{}
	queue := []item{{root, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.urn] {
			continue
		}
		visited[cur.urn] = true

		if n := g.nodes[cur.urn]; n != nil {
			sub.AddNode(n)
		}
		if maxDepth >= 0 && cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.bySource[cur.urn] {
			sub.AddEdge(e)
			if !visited[e.Target] {
				queue = append(queue, item{e.Target, cur.depth + 1})
			}
		}
	}
	return sub
}

// FilterByFamily returns a new graph keeping only nodes in the given
// families, and only edges whose endpoints both survive.
func (g *Graph) FilterByFamily(families []string) *Graph {
	keep := make(map[string]bool, len(families))
	for _, f := range families {
		keep[f] = true
	}

	filtered := New()
	for _, n := range g.nodes {
		if keep[n.Family] {
			filtered.AddNode(n)
		}
	}
	for _, e := range g.edges {
		src, dst := g.nodes[e.Source], g.nodes[e.Target]
		if src != nil && dst != nil && keep[src.Family] && keep[dst.Family] {
			filtered.AddEdge(e)
		}
	}
	return filtered
}
