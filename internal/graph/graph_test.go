package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeCreatesStubNodes(t *testing.T) {
	g := New()
	ok := g.AddEdge(Edge{Source: "wagon:mechanic", Target: "feature:mechanic:timebank", Type: EdgeContains})
	require.True(t, ok)

	for _, e := range g.Edges() {
		assert.NotNil(t, g.Node(e.Source), "source node must exist")
		assert.NotNil(t, g.Node(e.Target), "target node must exist")
	}
	assert.Equal(t, "wagon", g.Node("wagon:mechanic").Family)
	assert.Equal(t, "feature", g.Node("feature:mechanic:timebank").Family)
}

func TestAddEdgeFamilyFilter(t *testing.T) {
	g := New("wagon", "feature")

	assert.True(t, g.AddEdge(Edge{Source: "wagon:a", Target: "feature:a:b", Type: EdgeContains}))
	assert.False(t, g.AddEdge(Edge{Source: "wagon:a", Target: "contract:a:b", Type: EdgeProduces}),
		"contract endpoint is outside the allowed families")
	assert.Len(t, g.Edges(), 1)
	assert.Nil(t, g.Node("contract:a:b"))
}

func TestDisplayLabel(t *testing.T) {
	n := &Node{URN: "feature:mechanic:timebank", Family: "feature"}
	assert.Equal(t, "timebank", n.DisplayLabel())

	n.Label = "Timebank"
	assert.Equal(t, "Timebank", n.DisplayLabel())
}

func buildChain() *Graph {
	g := New()
	g.AddEdge(Edge{Source: "wagon:a", Target: "feature:a:f", Type: EdgeContains})
	g.AddEdge(Edge{Source: "feature:a:f", Target: "component:a:f:Panel:frontend:presentation", Type: EdgeContains})
	g.AddEdge(Edge{Source: "wagon:a", Target: "wmbt:a:C001", Type: EdgeContains})
	return g
}

func TestSubgraph(t *testing.T) {
	g := buildChain()

	t.Run("depth 0 is the root alone", func(t *testing.T) {
		sub := g.Subgraph("wagon:a", 0)
		assert.Len(t, sub.Nodes(), 1)
		assert.Empty(t, sub.Edges())
		assert.NotNil(t, sub.Node("wagon:a"))
	})

	t.Run("depth 1 stops at direct children", func(t *testing.T) {
		sub := g.Subgraph("wagon:a", 1)
		assert.Len(t, sub.Nodes(), 3)
		assert.Len(t, sub.Edges(), 2)
		assert.Nil(t, sub.Node("component:a:f:Panel:frontend:presentation"))
	})

	t.Run("unlimited depth reaches everything", func(t *testing.T) {
		sub := g.Subgraph("wagon:a", -1)
		assert.Len(t, sub.Nodes(), 4)
		assert.Len(t, sub.Edges(), 3)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		cyclic := New()
		cyclic.AddEdge(Edge{Source: "wagon:a", Target: "wagon:b", Type: EdgeReferences})
		cyclic.AddEdge(Edge{Source: "wagon:b", Target: "wagon:a", Type: EdgeReferences})

		sub := cyclic.Subgraph("wagon:a", -1)
		assert.Len(t, sub.Nodes(), 2)
	})
}

func TestFilterByFamily(t *testing.T) {
	g := buildChain()
	g.AddEdge(Edge{Source: "wagon:a", Target: "contract:a:thing", Type: EdgeProduces})

	filtered := g.FilterByFamily([]string{"wagon", "feature"})
	assert.NotNil(t, filtered.Node("wagon:a"))
	assert.NotNil(t, filtered.Node("feature:a:f"))
	assert.Nil(t, filtered.Node("contract:a:thing"))

	for _, e := range filtered.Edges() {
		assert.NotNil(t, filtered.Node(e.Source))
		assert.NotNil(t, filtered.Node(e.Target))
	}
	assert.Len(t, filtered.Edges(), 1, "only the wagon->feature edge survives")
}

func TestChildrenAndParents(t *testing.T) {
	g := buildChain()

	children := g.Children("wagon:a", EdgeContains)
	assert.Len(t, children, 2)

	parents := g.Parents("feature:a:f", EdgeContains)
	require.Len(t, parents, 1)
	assert.Equal(t, "wagon:a", parents[0].URN)

	assert.Empty(t, g.Children("wagon:a", EdgeProduces))
}

func TestExport(t *testing.T) {
	g := buildChain()
	exp := g.ToExport()

	assert.Equal(t, len(g.Nodes()), exp.Metadata.NodeCount)
	assert.Equal(t, len(g.Edges()), exp.Metadata.EdgeCount)
	assert.Contains(t, exp.Metadata.Families, "wagon")

	out, err := g.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"wagon:a"`)

	dot := g.ToDOT("")
	assert.Contains(t, dot, `digraph "URN Traceability Graph"`)
	assert.Contains(t, dot, `"wagon:a" -> "feature:a:f"`)
	assert.Contains(t, dot, "label=\"contains\"")
}
