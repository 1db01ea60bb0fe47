// Package validate runs structural checks over the traceability graph:
// orphaned nodes, broken references, non-deterministic resolutions, and
// missing required edges.
package validate

import (
	"fmt"
	"strings"

	"urntrace/internal/graph"
	"urntrace/internal/resolver"
	"urntrace/internal/urn"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IssueType classifies what a check found.
type IssueType string

const (
	IssueOrphan           IssueType = "orphan"
	IssueBroken           IssueType = "broken"
	IssueNonDeterministic IssueType = "non_deterministic"
	IssueMissingEdge      IssueType = "missing_edge"
	IssueInvalidFormat    IssueType = "invalid_format"
	IssueLegacyContract   IssueType = "legacy_contract"
)

// Issue is one finding from a validation pass.
type Issue struct {
	Type       IssueType `json:"type"`
	Severity   Severity  `json:"severity"`
	URN        string    `json:"urn"`
	Message    string    `json:"message"`
	Location   string    `json:"location,omitempty"`
	Context    string    `json:"context,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

func (i Issue) String() string {
	prefix := map[Severity]string{
		SeverityError:   "ERROR",
		SeverityWarning: "WARN",
		SeverityInfo:    "INFO",
	}[i.Severity]
	s := fmt.Sprintf("[%s] %s: %s", prefix, i.Type, i.Message)
	if i.Location != "" {
		s += " at " + i.Location
	}
	return s
}

// Result aggregates the issues of one or more validation passes.
type Result struct {
	Issues          []Issue  `json:"issues"`
	CheckedURNs     int      `json:"checked_urns"`
	FamiliesChecked []string `json:"families_checked"`
}

// ErrorCount is the number of error-severity issues.
func (r *Result) ErrorCount() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount is the number of warning-severity issues.
func (r *Result) WarningCount() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity issue exists.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

// IsValid reports whether validation passed (no errors).
func (r *Result) IsValid() bool { return !r.HasErrors() }

// FilterByType returns issues of one type.
func (r *Result) FilterByType(t IssueType) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}

// FilterByFamily returns issues whose URN belongs to one family.
func (r *Result) FilterByFamily(family string) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if strings.HasPrefix(i.URN, family+":") {
			out = append(out, i)
		}
	}
	return out
}

// orphanParents suggests the expected parent family for orphan fixes.
var orphanParents = map[string]string{
	urn.FamilyFeature:   urn.FamilyWagon,
	urn.FamilyWMBT:      urn.FamilyWagon,
	urn.FamilyAcc:       urn.FamilyWMBT,
	urn.FamilyContract:  urn.FamilyWagon,
	urn.FamilyTelemetry: urn.FamilyWagon,
	urn.FamilyComponent: urn.FamilyFeature,
}

// rootFamilies are allowed to have no incoming edges.
var rootFamilies = map[string]bool{
	urn.FamilyWagon: true,
	urn.FamilyTrain: true,
}

// Validator runs check passes over a freshly built graph. Every public
// method performs a full repository rescan; nothing is cached between
// calls.
type Validator struct {
	registry *resolver.Registry
	builder  *graph.Builder
}

// NewValidator builds a validator over a resolver registry.
func NewValidator(reg *resolver.Registry) *Validator {
	return &Validator{registry: reg, builder: graph.NewBuilder(reg)}
}

// FindOrphans flags non-root nodes with zero incoming edges. Root
// families (wagon, train) are exempt.
func (v *Validator) FindOrphans(families []string) []Issue {
	g, _ := v.builder.Build(families)

	target := map[string]bool{}
	if families != nil {
		for _, f := range families {
			target[f] = true
		}
	} else {
		for f := range orphanParents {
			target[f] = true
		}
	}

	var issues []Issue
	for u, node := range g.Nodes() {
		if rootFamilies[node.Family] || !target[node.Family] {
			continue
		}
		if len(g.Incoming(u)) > 0 {
			continue
		}
		parent := orphanParents[node.Family]
		if parent == "" {
			parent = "parent"
		}
		issues = append(issues, Issue{
			Type:       IssueOrphan,
			Severity:   SeverityWarning,
			URN:        u,
			Message:    fmt.Sprintf("Orphaned %s URN: no parent references", node.Family),
			Location:   node.ArtifactPath,
			Context:    "Family: " + node.Family,
			Suggestion: fmt.Sprintf("Add reference to this URN from a parent %s", parent),
		})
	}
	return issues
}

// FindBroken flags graph nodes whose URN does not resolve to any
// filesystem artifact.
func (v *Validator) FindBroken(families []string) []Issue {
	g, _ := v.builder.Build(families)

	keep := map[string]bool{}
	for _, f := range families {
		keep[f] = true
	}

	var issues []Issue
	for u, node := range g.Nodes() {
		if families != nil && !keep[node.Family] {
			continue
		}
		res := v.registry.Resolve(u)
		if !res.Broken() {
			continue
		}
		msg := res.Err
		if msg == "" {
			msg = "not resolvable"
		}
		issues = append(issues, Issue{
			Type:       IssueBroken,
			Severity:   SeverityError,
			URN:        u,
			Message:    "Broken URN: " + msg,
			Context:    "Family: " + node.Family,
			Suggestion: "Create the missing artifact or fix the URN",
		})
	}
	return issues
}

// ValidateDeterminism flags declarations that resolve to more than one
// artifact. The message lists up to three paths.
func (v *Validator) ValidateDeterminism(families []string) []Issue {
	decls, _ := v.registry.FindAllDeclarations(families)

	var issues []Issue
	for _, ds := range decls {
		for _, d := range ds {
			res := v.registry.Resolve(d.URN)
			if res.Deterministic || !res.Resolved() {
				continue
			}
			shown := res.ResolvedPaths
			extra := ""
			if len(shown) > 3 {
				extra = fmt.Sprintf(" (+%d more)", len(shown)-3)
				shown = shown[:3]
			}
			issues = append(issues, Issue{
				Type:       IssueNonDeterministic,
				Severity:   SeverityWarning,
				URN:        d.URN,
				Message:    fmt.Sprintf("URN resolves to %d artifacts", len(res.ResolvedPaths)),
				Location:   d.SourcePath,
				Context:    "Resolved to: " + strings.Join(shown, ", ") + extra,
				Suggestion: "Ensure URN uniquely identifies one artifact",
			})
		}
	}
	return issues
}

// ValidateEdges checks edge completeness per family: features need a
// wagon parent and a component child, WMBTs and acceptances need their
// containment parents, contracts and telemetry need a producer, trains
// need wagon members, and a component's wagon slug must name a known
// wagon.
func (v *Validator) ValidateEdges(families []string) []Issue {
	g, _ := v.builder.Build(families)

	var issues []Issue
	for u, node := range g.Nodes() {
		switch node.Family {
		case urn.FamilyFeature:
			if !hasParentOfFamily(g, u, graph.EdgeContains, urn.FamilyWagon) {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    "Feature has no parent wagon",
					Location:   node.ArtifactPath,
					Suggestion: "Add feature reference to wagon manifest",
				})
			}
			if !hasChildOfFamily(g, u, graph.EdgeContains, urn.FamilyComponent) {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    "Feature has no component children, chain dead-ends at feature level",
					Suggestion: "Add at least one component:{wagon}:{feature}:* URN declaration",
				})
			}

		case urn.FamilyWMBT:
			if !hasParentOfFamily(g, u, graph.EdgeContains, urn.FamilyWagon) {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    "WMBT has no parent wagon",
					Location:   node.ArtifactPath,
					Suggestion: "Ensure WMBT is in correct wagon directory",
				})
			}

		case urn.FamilyAcc:
			if !hasParentOfFamily(g, u, graph.EdgeContains, urn.FamilyWMBT) {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    "Acceptance has no parent WMBT",
					Location:   node.ArtifactPath,
					Suggestion: "Ensure acceptance is declared in WMBT file",
				})
			}

		case urn.FamilyContract, urn.FamilyTelemetry:
			if !hasIncomingType(g, u, graph.EdgeProduces) {
				label := "Contract"
				if node.Family == urn.FamilyTelemetry {
					label = "Telemetry"
				}
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    label + " has no producing wagon",
					Location:   node.ArtifactPath,
					Suggestion: "Add " + strings.ToLower(label) + " to wagon's produce[] section",
				})
			}

		case urn.FamilyTrain:
			if !hasOutgoingType(g, u, graph.EdgeParentOf) {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    "Train has no wagon references",
					Location:   node.ArtifactPath,
					Suggestion: "Add wagons[] to train definition",
				})
			}

		case urn.FamilyComponent:
			p, err := urn.Parse(u)
			if err != nil || p.Wagon == "" || p.Wagon == urn.ReservedTrainsSlug {
				continue
			}
			// Stub wagon nodes are synthesized during edge building, so
			// presence in the graph is not enough: the slug must resolve.
			if !v.registry.Resolve("wagon:" + p.Wagon).Resolved() {
				issues = append(issues, Issue{
					Type:       IssueMissingEdge,
					Severity:   SeverityWarning,
					URN:        u,
					Message:    fmt.Sprintf("Component wagon slug %q names no known wagon", p.Wagon),
					Location:   node.ArtifactPath,
					Suggestion: fmt.Sprintf("Ensure wagon:%s exists, or use a valid wagon slug", p.Wagon),
				})
			}
		}
	}
	return issues
}

// ValidateAll runs every check pass. In the "warn" phase error-severity
// issues are downgraded to warnings so early repositories can adopt
// validation incrementally.
func (v *Validator) ValidateAll(families []string, phase string) *Result {
	result := &Result{FamiliesChecked: families}
	if result.FamiliesChecked == nil {
		result.FamiliesChecked = v.registry.Families()
	}

	decls, _ := v.registry.FindAllDeclarations(families)
	for _, ds := range decls {
		result.CheckedURNs += len(ds)
	}

	result.Issues = append(result.Issues, v.FindOrphans(families)...)
	result.Issues = append(result.Issues, v.FindBroken(families)...)
	result.Issues = append(result.Issues, v.ValidateDeterminism(families)...)
	result.Issues = append(result.Issues, v.ValidateEdges(families)...)
	result.Issues = append(result.Issues, v.FindLegacyContracts()...)

	if phase == "warn" {
		for i := range result.Issues {
			if result.Issues[i].Severity == SeverityError {
				result.Issues[i].Severity = SeverityWarning
			}
		}
	}
	return result
}

// ValidateContracts runs the contract-focused subset: every contract
// declaration must resolve, and every resolved contract must have a
// producing wagon.
func (v *Validator) ValidateContracts() *Result {
	result := &Result{FamiliesChecked: []string{urn.FamilyContract}}

	decls, _ := v.registry.FindAllDeclarations([]string{urn.FamilyContract})
	contractDecls := decls[urn.FamilyContract]
	result.CheckedURNs = len(contractDecls)

	g, _ := v.builder.Build([]string{urn.FamilyWagon, urn.FamilyContract})

	for _, d := range contractDecls {
		res := v.registry.Resolve(d.URN)
		if res.Broken() {
			result.Issues = append(result.Issues, Issue{
				Type:     IssueBroken,
				Severity: SeverityError,
				URN:      d.URN,
				Message:  "Contract URN broken: " + res.Err,
				Location: d.SourcePath,
			})
			continue
		}
		if !hasIncomingType(g, d.URN, graph.EdgeProduces) {
			result.Issues = append(result.Issues, Issue{
				Type:       IssueOrphan,
				Severity:   SeverityWarning,
				URN:        d.URN,
				Message:    "Contract has no producing wagon",
				Location:   d.SourcePath,
				Suggestion: "Add contract to wagon's produce[] section",
			})
		}
	}
	return result
}

func hasParentOfFamily(g *graph.Graph, u string, t graph.EdgeType, family string) bool {
	for _, p := range g.Parents(u, t) {
		if p.Family == family {
			return true
		}
	}
	return false
}

func hasChildOfFamily(g *graph.Graph, u string, t graph.EdgeType, family string) bool {
	for _, c := range g.Children(u, t) {
		if c.Family == family {
			return true
		}
	}
	return false
}

func hasIncomingType(g *graph.Graph, u string, t graph.EdgeType) bool {
	for _, e := range g.Incoming(u) {
		if e.Type == t {
			return true
		}
	}
	return false
}

func hasOutgoingType(g *graph.Graph, u string, t graph.EdgeType) bool {
	for _, e := range g.Outgoing(u) {
		if e.Type == t {
			return true
		}
	}
	return false
}
