package resolver

import (
	"sort"

	"urntrace/internal/config"
	"urntrace/internal/urn"
)

// Registry routes URNs to the resolver for their family. All eleven
// family resolvers are registered by default; Register replaces one for a
// family, which tests use to inject fakes.
type Registry struct {
	layout    *config.Layout
	resolvers map[string]Resolver
}

// NewRegistry builds a registry over a repository layout with all default
// family resolvers registered.
func NewRegistry(l *config.Layout) *Registry {
	r := &Registry{layout: l, resolvers: map[string]Resolver{}}
	for _, res := range []Resolver{
		NewWagonResolver(l),
		NewFeatureResolver(l),
		NewWMBTResolver(l),
		NewAcceptanceResolver(l),
		NewContractResolver(l),
		NewTelemetryResolver(l),
		NewTrainResolver(l),
		NewComponentResolver(l),
		NewTableResolver(l),
		NewMigrationResolver(l),
		NewTestResolver(l),
	} {
		r.Register(res)
	}
	return r
}

// Register adds or replaces the resolver for its family.
func (r *Registry) Register(res Resolver) {
	r.resolvers[res.Family()] = res
}

// Get returns the resolver for a family, or nil.
func (r *Registry) Get(family string) Resolver {
	return r.resolvers[family]
}

// Resolve routes a URN to its family resolver. Unknown or missing
// families produce a broken resolution rather than an error return so
// callers can treat every URN uniformly.
func (r *Registry) Resolve(u string) Resolution {
	family := urn.FamilyOf(u)
	if family == "" {
		return errResolution(u, "unknown", "invalid URN format: "+u)
	}
	res, ok := r.resolvers[family]
	if !ok {
		return errResolution(u, family, "no resolver registered for family: "+family)
	}
	return res.Resolve(u)
}

// ResolveAll resolves every URN in the list.
func (r *Registry) ResolveAll(urns []string) map[string]Resolution {
	out := make(map[string]Resolution, len(urns))
	for _, u := range urns {
		out[u] = r.Resolve(u)
	}
	return out
}

// FindAllDeclarations scans the repository for declarations in the given
// families, or all registered families when nil. Per-file scan failures
// are collected as diagnostics, never silently dropped.
func (r *Registry) FindAllDeclarations(families []string) (map[string][]Declaration, []Diagnostic) {
	if families == nil {
		families = r.Families()
	}
	decls := make(map[string][]Declaration, len(families))
	var diags []Diagnostic
	for _, family := range families {
		res, ok := r.resolvers[family]
		if !ok {
			continue
		}
		d, dg := res.FindDeclarations()
		decls[family] = d
		diags = append(diags, dg...)
	}
	return decls, diags
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	out := make([]string, 0, len(r.resolvers))
	for f := range r.resolvers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Layout exposes the repository layout the registry scans.
func (r *Registry) Layout() *config.Layout {
	return r.layout
}
