package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Export is the machine-readable record form of a graph.
type Export struct {
	Nodes    []*Node        `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata ExportMetadata `json:"metadata"`
}

// ExportMetadata summarizes the exported graph.
type ExportMetadata struct {
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Families  []string `json:"families"`
}

// ToExport builds the record form of the graph. Nodes are ordered by URN
// so repeated exports of the same graph are byte-identical.
func (g *Graph) ToExport() Export {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].URN < nodes[j].URN })

	famSet := map[string]bool{}
	for _, n := range nodes {
		famSet[n.Family] = true
	}
	families := make([]string, 0, len(famSet))
	for f := range famSet {
		families = append(families, f)
	}
	sort.Strings(families)

	return Export{
		Nodes: nodes,
		Edges: g.edges,
		Metadata: ExportMetadata{
			NodeCount: len(nodes),
			EdgeCount: len(g.edges),
			Families:  families,
		},
	}
}

// ToJSON renders the graph as indented JSON.
func (g *Graph) ToJSON() ([]byte, error) {
	return json.MarshalIndent(g.ToExport(), "", "  ")
}

// familyColors keys DOT node fill colors by family.
var familyColors = map[string]string{
	"wagon":     "#E3F2FD",
	"feature":   "#E8F5E9",
	"wmbt":      "#FFF3E0",
	"acc":       "#FCE4EC",
	"contract":  "#F3E5F5",
	"telemetry": "#E0F7FA",
	"train":     "#FFEBEE",
	"component": "#FFF8E1",
	"table":     "#ECEFF1",
	"migration": "#EFEBE9",
	"test":      "#FCE4EC",
}

// edgeStyles keys DOT edge attributes by edge type.
var edgeStyles = map[EdgeType]string{
	EdgeContains:   `style=solid, color="#2196F3"`,
	EdgeProduces:   `style=dashed, color="#4CAF50"`,
	EdgeConsumes:   `style=dashed, color="#FF9800"`,
	EdgeImplements: `style=dotted, color="#9C27B0"`,
	EdgeReferences: `style=dotted, color="#607D8B"`,
	EdgeParentOf:   `style=bold, color="#F44336"`,
}

// ToDOT renders the graph in Graphviz DOT format for visualization.
func (g *Graph) ToDOT(title string) string {
	if title == "" {
		title = "URN Traceability Graph"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", title)
	b.WriteString("    rankdir=TB;\n")
	b.WriteString("    node [shape=box, style=filled];\n\n")

	urns := make([]string, 0, len(g.nodes))
	for u := range g.nodes {
		urns = append(urns, u)
	}
	sort.Strings(urns)

	for _, u := range urns {
		n := g.nodes[u]
		color, ok := familyColors[n.Family]
		if !ok {
			color = "#FAFAFA"
		}
		fmt.Fprintf(&b, "    %q [label=\"%s\\n(%s)\", fillcolor=%q];\n",
			u, dotEscape(n.DisplayLabel()), n.Family, color)
	}

	b.WriteString("\n")
	for _, e := range g.edges {
		fmt.Fprintf(&b, "    %q -> %q [%s, label=%q];\n",
			e.Source, e.Target, edgeStyles[e.Type], string(e.Type))
	}

	b.WriteString("}\n")
	return b.String()
}

func dotEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
