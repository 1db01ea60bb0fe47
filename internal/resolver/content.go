package resolver

import (
	"path/filepath"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/manifest"
	"urntrace/internal/scanner"
	"urntrace/internal/urn"
)

// Content-matching resolvers: there is no path convention for these
// families, so resolution scans a known directory tree for documents whose
// declared identifier matches the URN. Multiple matches are legal and
// yield a non-deterministic resolution.

// LegacyContractPrefix marks pre-migration contract ids that must not be
// treated as traceability contract identifiers.
const LegacyContractPrefix = "urn:jel:"

// ContractResolver maps contract:{hierarchy} to contracts/**/*.schema.json
// files whose $id matches under one of three equivalence rules: exact,
// colon/dot-normalized, or path-derived.
type ContractResolver struct {
	layout *config.Layout
}

func NewContractResolver(l *config.Layout) *ContractResolver { return &ContractResolver{layout: l} }

func (r *ContractResolver) Family() string { return urn.FamilyContract }
func (r *ContractResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *ContractResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a contract URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	contractID := strings.TrimPrefix(u, "contract:")
	paths := r.findContractFiles(contractID)
	return pathsResolution(u, r.Family(), paths, "contract schema not found for: "+u)
}

func (r *ContractResolver) findContractFiles(contractID string) []string {
	var paths []string
	contractsDir := r.layout.ContractsDir()

	_ = scanner.Walk(contractsDir, []string{".schema.json"}, func(path string) error {
		id, err := manifest.SchemaID(path)
		if err != nil || id == "" {
			return nil
		}
		if strings.HasPrefix(id, LegacyContractPrefix) {
			return nil
		}

		// Exact match.
		if id == contractID {
			paths = append(paths, path)
			return nil
		}

		// Normalized match: dots and colons are interchangeable in ids.
		if strings.ReplaceAll(id, ".", ":") == strings.ReplaceAll(contractID, ".", ":") {
			paths = append(paths, path)
			return nil
		}

		// Path-derived match: contracts/a/b/c.schema.json <=> a:b:c.
		rel, err := filepath.Rel(contractsDir, path)
		if err != nil {
			return nil
		}
		derived := strings.TrimSuffix(filepath.ToSlash(rel), ".schema.json")
		if derived == strings.ReplaceAll(contractID, ":", "/") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func (r *ContractResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic

	_ = scanner.Walk(r.layout.ContractsDir(), []string{".schema.json"}, func(path string) error {
		id, err := manifest.SchemaID(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		if id == "" || strings.HasPrefix(id, LegacyContractPrefix) {
			return nil
		}
		decls = append(decls, Declaration{
			URN:        "contract:" + id,
			Family:     r.Family(),
			SourcePath: path,
			Context:    "contract schema",
		})
		return nil
	})
	return decls, diags
}

// TelemetryResolver maps telemetry:{hierarchy} to telemetry/**/*.{yaml,json}
// documents whose $id (or id) matches, with or without the family prefix.
type TelemetryResolver struct {
	layout *config.Layout
}

func NewTelemetryResolver(l *config.Layout) *TelemetryResolver {
	return &TelemetryResolver{layout: l}
}

func (r *TelemetryResolver) Family() string { return urn.FamilyTelemetry }
func (r *TelemetryResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *TelemetryResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a telemetry URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	telemetryID := strings.TrimPrefix(u, "telemetry:")

	var paths []string
	_ = scanner.Walk(r.layout.TelemetryDir(), []string{".yaml", ".yml", ".json"}, func(path string) error {
		id, err := manifest.SchemaID(path)
		if err != nil || id == "" {
			return nil
		}
		if id == telemetryID || id == "telemetry:"+telemetryID {
			paths = append(paths, path)
		}
		return nil
	})
	return pathsResolution(u, r.Family(), paths, "telemetry file not found for: "+u)
}

func (r *TelemetryResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic

	_ = scanner.Walk(r.layout.TelemetryDir(), []string{".yaml", ".yml", ".json"}, func(path string) error {
		id, err := manifest.SchemaID(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		if id == "" {
			return nil
		}
		u := id
		if !strings.HasPrefix(u, "telemetry:") {
			u = "telemetry:" + u
		}
		decls = append(decls, Declaration{
			URN:        u,
			Family:     r.Family(),
			SourcePath: path,
			Context:    "telemetry definition",
		})
		return nil
	})
	return decls, diags
}
