// Package resolver maps URNs to the filesystem artifacts they denote and
// scans the repository for URN declarations, one strategy per family
// behind a common interface.
package resolver

import (
	"path/filepath"
	"strings"

	"urntrace/internal/urn"
)

// Declaration records where a URN was asserted to exist. Declarations are
// rebuilt on every scan and never mutated afterwards.
type Declaration struct {
	URN        string `json:"urn"`
	Family     string `json:"family"`
	SourcePath string `json:"source_path"`
	Line       int    `json:"line,omitempty"` // 0 when unknown
	Context    string `json:"context,omitempty"`
}

// Resolution is the result of mapping a URN to zero, one or many artifact
// paths. Resolution failures are data, never panics or returned errors.
type Resolution struct {
	URN           string   `json:"urn"`
	Family        string   `json:"family"`
	ResolvedPaths []string `json:"resolved_paths"`
	Deterministic bool     `json:"is_deterministic"`
	Err           string   `json:"error,omitempty"`
}

// Resolved reports whether the URN mapped to at least one artifact.
func (r Resolution) Resolved() bool {
	return len(r.ResolvedPaths) > 0 && r.Err == ""
}

// Broken reports whether the URN could not be resolved. A resolution can
// be resolved and still non-deterministic; those predicates are
// independent.
func (r Resolution) Broken() bool {
	return len(r.ResolvedPaths) == 0 || r.Err != ""
}

// Diagnostic records a file skipped during a declaration scan. Skips are
// soft: one bad file never halts the scan.
type Diagnostic struct {
	Path string
	Err  error
}

// Resolver is the per-family resolution strategy.
type Resolver interface {
	// Family returns the URN family this resolver handles.
	Family() string
	// CanResolve reports whether the URN's family prefix matches.
	CanResolve(u string) bool
	// Resolve maps a URN to filesystem artifact(s).
	Resolve(u string) Resolution
	// FindDeclarations scans the repository for declarations of this
	// family, accumulating per-file skips as diagnostics.
	FindDeclarations() ([]Declaration, []Diagnostic)
}

// errResolution builds a failed resolution.
func errResolution(u, family, msg string) Resolution {
	return Resolution{URN: u, Family: family, Err: msg}
}

// pathsResolution builds a resolution from found paths; missingMsg becomes
// the error when no path was found.
func pathsResolution(u, family string, paths []string, missingMsg string) Resolution {
	res := Resolution{
		URN:           u,
		Family:        family,
		ResolvedPaths: paths,
		Deterministic: len(paths) == 1,
	}
	if len(paths) == 0 {
		res.Err = missingMsg
	}
	return res
}

// checkFormat validates a URN against its family grammar before any I/O.
// Returns an error message, or "" when the URN is well-formed.
func checkFormat(u, family string) string {
	if !urn.KnownFamily(family) {
		return "no grammar defined for family '" + family + "'"
	}
	if !urn.Validate(u, family) {
		return "invalid format: URN '" + u + "' does not match the " + family + " grammar"
	}
	return ""
}

func hasFamilyPrefix(u, family string) bool {
	return strings.HasPrefix(u, family+":")
}

// underscored converts a kebab-case slug to the snake_case directory name
// the plan tree uses.
func underscored(slug string) string {
	return strings.ReplaceAll(slug, "-", "_")
}

// stem returns the filename without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
