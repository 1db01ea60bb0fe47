package graph

import (
	"path/filepath"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/manifest"
	"urntrace/internal/resolver"
	"urntrace/internal/scanner"
	"urntrace/internal/urn"
)

// Builder assembles the traceability graph from a full repository scan:
// declarations become nodes, then containment, produce/consume, and train
// membership passes derive edges.
type Builder struct {
	registry *resolver.Registry
	layout   *config.Layout
}

// NewBuilder creates a builder over a resolver registry.
func NewBuilder(reg *resolver.Registry) *Builder {
	return &Builder{registry: reg, layout: reg.Layout()}
}

// Build constructs the complete graph. When families is non-nil both the
// declaration scan and edge acceptance are restricted to those families.
// Per-file scan failures are returned as diagnostics alongside the graph.
func (b *Builder) Build(families []string) (*Graph, []resolver.Diagnostic) {
	g := New(families...)

	decls, diags := b.registry.FindAllDeclarations(families)
	for family, ds := range decls {
		for _, d := range ds {
			res := b.registry.Resolve(d.URN)
			var artifact string
			if len(res.ResolvedPaths) > 0 {
				artifact = res.ResolvedPaths[0]
			}
			g.AddNode(&Node{
				URN:          d.URN,
				Family:       family,
				ArtifactPath: artifact,
				Metadata:     map[string]string{"source_path": d.SourcePath},
			})
		}
	}

	b.buildContainmentEdges(g)
	b.buildProduceConsumeEdges(g)
	b.buildTrainEdges(g)
	b.buildComponentEdges(g)

	return g, diags
}

// BuildFromRoot builds the full graph, then extracts the subgraph
// reachable from root bounded by maxDepth (-1 for unlimited).
func (b *Builder) BuildFromRoot(root string, maxDepth int, families []string) (*Graph, []resolver.Diagnostic) {
	g, diags := b.Build(families)
	return g.Subgraph(root, maxDepth), diags
}

// buildContainmentEdges derives wagon→feature, wagon→wmbt, and wmbt→acc
// edges from URN structure alone.
func (b *Builder) buildContainmentEdges(g *Graph) {
	structural := map[string]string{"source": "urn-structure"}

	for _, n := range snapshotNodes(g) {
		switch n.Family {
		case urn.FamilyFeature, urn.FamilyWMBT:
			p, err := urn.Parse(n.URN)
			if err != nil || p.Wagon == "" {
				continue
			}
			g.AddEdge(Edge{
				Source:   "wagon:" + p.Wagon,
				Target:   n.URN,
				Type:     EdgeContains,
				Metadata: structural,
			})

		case urn.FamilyAcc:
			p, err := urn.Parse(n.URN)
			if err != nil || p.Wagon == "" || p.WMBTID == "" {
				continue
			}
			g.AddEdge(Edge{
				Source:   "wmbt:" + p.Wagon + ":" + p.WMBTID,
				Target:   n.URN,
				Type:     EdgeContains,
				Metadata: structural,
			})
		}
	}
}

// buildProduceConsumeEdges reads every wagon manifest under the plan tree
// and derives wagon→contract and wagon→telemetry edges.
func (b *Builder) buildProduceConsumeEdges(g *Graph) {
	_ = scanner.Walk(b.layout.PlanDir(), []string{".yaml"}, func(path string) error {
		if !strings.HasPrefix(filepath.Base(path), "_") {
			return nil
		}
		w, err := manifest.LoadWagon(path)
		if err != nil || w.Wagon == "" {
			return nil
		}
		wagonURN := "wagon:" + w.Wagon

		if n := g.Node(wagonURN); n != nil && w.Description != "" {
			if n.Metadata == nil {
				n.Metadata = map[string]string{}
			}
			n.Metadata["description"] = w.Description
		}

		for _, p := range w.Produce {
			contractURN := p.URN
			if !strings.HasPrefix(contractURN, "contract:") {
				contractURN = b.contractRefURN(p.Contract)
			}
			if contractURN != "" {
				g.AddEdge(Edge{Source: wagonURN, Target: contractURN, Type: EdgeProduces})
			}
			for _, ref := range p.Telemetry {
				if t := telemetryRefURN(ref); t != "" {
					g.AddEdge(Edge{Source: wagonURN, Target: t, Type: EdgeProduces})
				}
			}
		}

		for _, c := range w.Consume {
			if contractURN := b.contractRefURN(c.Contract); contractURN != "" {
				g.AddEdge(Edge{Source: wagonURN, Target: contractURN, Type: EdgeConsumes})
			}
			for _, ref := range c.Telemetry {
				if t := telemetryRefURN(ref); t != "" {
					g.AddEdge(Edge{Source: wagonURN, Target: t, Type: EdgeConsumes})
				}
			}
		}
		return nil
	})
}

// contractRefURN normalizes a manifest contract reference to a URN. A
// reference may already be a URN, a repository-relative schema path whose
// $id carries the identifier, or a bare schema id.
func (b *Builder) contractRefURN(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "contract:") {
		return ref
	}
	if strings.HasPrefix(ref, "contracts/") || strings.HasSuffix(ref, ".schema.json") {
		id, err := manifest.SchemaID(filepath.Join(b.layout.Root, filepath.FromSlash(ref)))
		if err != nil || id == "" || strings.HasPrefix(id, resolver.LegacyContractPrefix) {
			return ""
		}
		return "contract:" + id
	}
	return "contract:" + ref
}

func telemetryRefURN(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "telemetry:") {
		return ref
	}
	return "telemetry:" + ref
}

// buildTrainEdges derives train→wagon membership from the train
// definitions under plan/_trains.
func (b *Builder) buildTrainEdges(g *Graph) {
	paths, _ := filepath.Glob(filepath.Join(b.layout.TrainSpecsDir(), "*.yaml"))
	for _, path := range paths {
		t, err := manifest.LoadTrain(path)
		if err != nil || t.ID == "" {
			continue
		}
		trainURN := "train:" + t.ID

		if n := g.Node(trainURN); n != nil && t.Description != "" {
			if n.Metadata == nil {
				n.Metadata = map[string]string{}
			}
			n.Metadata["description"] = t.Description
		}

		for _, ref := range t.Wagons {
			slug := string(ref)
			if slug == "" {
				continue
			}
			wagonURN := slug
			if !strings.HasPrefix(wagonURN, "wagon:") {
				wagonURN = "wagon:" + slug
			}
			g.AddEdge(Edge{Source: trainURN, Target: wagonURN, Type: EdgeParentOf})
		}
	}
}

// buildComponentEdges derives feature→component containment from
// component URN structure, backfilling a wagon→feature edge when the
// feature was synthesized and has no containment parent yet.
func (b *Builder) buildComponentEdges(g *Graph) {
	structural := map[string]string{"source": "urn-structure"}

	for _, n := range snapshotNodes(g) {
		if n.Family != urn.FamilyComponent {
			continue
		}
		p, err := urn.Parse(n.URN)
		if err != nil || p.Wagon == "" || p.Feature == "" {
			continue
		}
		featureURN := "feature:" + p.Wagon + ":" + p.Feature

		g.AddEdge(Edge{
			Source:   featureURN,
			Target:   n.URN,
			Type:     EdgeContains,
			Metadata: structural,
		})

		if len(g.Parents(featureURN, EdgeContains)) == 0 {
			g.AddEdge(Edge{
				Source:   "wagon:" + p.Wagon,
				Target:   featureURN,
				Type:     EdgeContains,
				Metadata: structural,
			})
		}
	}
}

// snapshotNodes copies the node list so edge passes can add stub nodes
// while iterating.
func snapshotNodes(g *Graph) []*Node {
	nodes := g.Nodes()
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
