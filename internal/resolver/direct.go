package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/manifest"
	"urntrace/internal/urn"
)

// Direct-path resolvers: the artifact path is derived deterministically
// from the URN's segments and the URN resolves iff that exact path exists.

var wmbtFileRe = regexp.MustCompile(`^[DLPCEMYRK]\d{3}\.yaml$`)

// resolveDirect is the shared tail of every direct-path resolver.
func resolveDirect(u, family, path, kind string) Resolution {
	var paths []string
	if _, err := os.Stat(path); err == nil {
		paths = append(paths, path)
	}
	return pathsResolution(u, family, paths, fmt.Sprintf("%s not found: %s", kind, path))
}

// WagonResolver maps wagon:{slug} to plan/{slug_}/_{slug_}.yaml.
type WagonResolver struct {
	layout *config.Layout
}

func NewWagonResolver(l *config.Layout) *WagonResolver { return &WagonResolver{layout: l} }

func (r *WagonResolver) Family() string { return urn.FamilyWagon }
func (r *WagonResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *WagonResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a wagon URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	slug := strings.TrimPrefix(u, "wagon:")
	path := filepath.Join(r.layout.PlanDir(), underscored(slug), "_"+underscored(slug)+".yaml")
	return resolveDirect(u, r.Family(), path, "wagon manifest")
}

func (r *WagonResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	forEachWagonManifest(r.layout, func(path string, w *manifest.Wagon) {
		if w.Wagon == "" {
			return
		}
		decls = append(decls, Declaration{
			URN:        "wagon:" + w.Wagon,
			Family:     r.Family(),
			SourcePath: path,
			Context:    "wagon manifest",
		})
	}, &diags)
	return decls, diags
}

// forEachWagonManifest loads every _*.yaml wagon manifest under the plan
// tree, recording unreadable files as diagnostics.
func forEachWagonManifest(l *config.Layout, fn func(path string, w *manifest.Wagon), diags *[]Diagnostic) {
	planDir := l.PlanDir()
	entries, err := os.ReadDir(planDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		wagonDir := filepath.Join(planDir, entry.Name())
		files, err := os.ReadDir(wagonDir)
		if err != nil {
			*diags = append(*diags, Diagnostic{Path: wagonDir, Err: err})
			continue
		}
		for _, f := range files {
			name := f.Name()
			if !strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".yaml") {
				continue
			}
			path := filepath.Join(wagonDir, name)
			w, err := manifest.LoadWagon(path)
			if err != nil {
				*diags = append(*diags, Diagnostic{Path: path, Err: err})
				continue
			}
			fn(path, w)
		}
	}
}

// FeatureResolver maps feature:{wagon}:{feature} to
// plan/{wagon_}/features/{feature_}.yaml.
type FeatureResolver struct {
	layout *config.Layout
}

func NewFeatureResolver(l *config.Layout) *FeatureResolver { return &FeatureResolver{layout: l} }

func (r *FeatureResolver) Family() string { return urn.FamilyFeature }
func (r *FeatureResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *FeatureResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a feature URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	p, err := urn.Parse(u)
	if err != nil || p.Feature == "" {
		return errResolution(u, r.Family(), "could not parse feature URN")
	}
	path := filepath.Join(r.layout.PlanDir(), underscored(p.Wagon), "features", underscored(p.Feature)+".yaml")
	return resolveDirect(u, r.Family(), path, "feature file")
}

func (r *FeatureResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	matches, _ := filepath.Glob(filepath.Join(r.layout.PlanDir(), "*", "features", "*.yaml"))
	for _, path := range matches {
		f, err := manifest.LoadFeature(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			continue
		}
		if u := f.DeclaredURN(); strings.HasPrefix(u, "feature:") {
			decls = append(decls, Declaration{
				URN:        u,
				Family:     r.Family(),
				SourcePath: path,
				Context:    "feature file",
			})
		}
	}
	return decls, diags
}

// WMBTResolver maps wmbt:{wagon}:{STEP}{NNN} to plan/{wagon_}/{STEP}{NNN}.yaml.
type WMBTResolver struct {
	layout *config.Layout
}

func NewWMBTResolver(l *config.Layout) *WMBTResolver { return &WMBTResolver{layout: l} }

func (r *WMBTResolver) Family() string { return urn.FamilyWMBT }
func (r *WMBTResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *WMBTResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a wmbt URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	p, err := urn.Parse(u)
	if err != nil || p.WMBTID == "" {
		return errResolution(u, r.Family(), "could not parse wmbt URN")
	}
	path := filepath.Join(r.layout.PlanDir(), underscored(p.Wagon), p.WMBTID+".yaml")
	return resolveDirect(u, r.Family(), path, "WMBT file")
}

func (r *WMBTResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	forEachWMBTFile(r.layout, func(path string, doc *manifest.WMBTDoc) {
		if u := doc.DeclaredURN(); strings.HasPrefix(u, "wmbt:") {
			decls = append(decls, Declaration{
				URN:        u,
				Family:     r.Family(),
				SourcePath: path,
				Context:    "WMBT file",
			})
		}
	}, &diags)
	return decls, diags
}

// forEachWMBTFile loads every step-coded YAML directly under a wagon's
// plan directory. Directories starting with "_" (e.g. _trains) are not
// wagon directories.
func forEachWMBTFile(l *config.Layout, fn func(path string, doc *manifest.WMBTDoc), diags *[]Diagnostic) {
	planDir := l.PlanDir()
	entries, err := os.ReadDir(planDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		wagonDir := filepath.Join(planDir, entry.Name())
		files, err := os.ReadDir(wagonDir)
		if err != nil {
			*diags = append(*diags, Diagnostic{Path: wagonDir, Err: err})
			continue
		}
		for _, f := range files {
			if !wmbtFileRe.MatchString(f.Name()) {
				continue
			}
			path := filepath.Join(wagonDir, f.Name())
			doc, err := manifest.LoadWMBT(path)
			if err != nil {
				*diags = append(*diags, Diagnostic{Path: path, Err: err})
				continue
			}
			fn(path, doc)
		}
	}
}

// AcceptanceResolver maps acc:{wagon}:{wmbt}-{harness}-{seq}[-{slug}] to
// the WMBT file whose acceptances[] block declares it.
type AcceptanceResolver struct {
	layout *config.Layout
}

func NewAcceptanceResolver(l *config.Layout) *AcceptanceResolver {
	return &AcceptanceResolver{layout: l}
}

func (r *AcceptanceResolver) Family() string { return urn.FamilyAcc }
func (r *AcceptanceResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *AcceptanceResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not an acc URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	p, err := urn.Parse(u)
	if err != nil || p.Wagon == "" || p.WMBTID == "" {
		return errResolution(u, r.Family(), "could not parse acceptance URN")
	}
	path := filepath.Join(r.layout.PlanDir(), underscored(p.Wagon), p.WMBTID+".yaml")
	return resolveDirect(u, r.Family(), path, "WMBT file for acceptance")
}

func (r *AcceptanceResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	forEachWMBTFile(r.layout, func(path string, doc *manifest.WMBTDoc) {
		for _, acc := range doc.Acceptances {
			if u := acc.DeclaredURN(); strings.HasPrefix(u, "acc:") {
				decls = append(decls, Declaration{
					URN:        u,
					Family:     r.Family(),
					SourcePath: path,
					Context:    "acceptance block",
				})
			}
		}
	}, &diags)
	return decls, diags
}

// TrainResolver maps train:{NNNN}-{slug} to plan/_trains/{id}.yaml.
type TrainResolver struct {
	layout *config.Layout
}

func NewTrainResolver(l *config.Layout) *TrainResolver { return &TrainResolver{layout: l} }

func (r *TrainResolver) Family() string { return urn.FamilyTrain }
func (r *TrainResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *TrainResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a train URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	id := strings.TrimPrefix(u, "train:")
	path := filepath.Join(r.layout.TrainSpecsDir(), id+".yaml")
	return resolveDirect(u, r.Family(), path, "train file")
}

func (r *TrainResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	matches, _ := filepath.Glob(filepath.Join(r.layout.TrainSpecsDir(), "*.yaml"))
	for _, path := range matches {
		t, err := manifest.LoadTrain(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			continue
		}
		decls = append(decls, Declaration{
			URN:        "train:" + t.ID,
			Family:     r.Family(),
			SourcePath: path,
			Context:    "train definition",
		})
	}
	return decls, diags
}

// MigrationResolver maps migration:{timestamp}_{name} to
// {database}/migrations/{timestamp}_{name}.sql.
type MigrationResolver struct {
	layout *config.Layout
}

func NewMigrationResolver(l *config.Layout) *MigrationResolver {
	return &MigrationResolver{layout: l}
}

var migrationFileRe = regexp.MustCompile(`^(\d{14}_[a-z][a-z0-9_]*)\.sql$`)

func (r *MigrationResolver) Family() string { return urn.FamilyMigration }
func (r *MigrationResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *MigrationResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a migration URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	id := strings.TrimPrefix(u, "migration:")
	path := filepath.Join(r.layout.MigrationsDir(), id+".sql")
	return resolveDirect(u, r.Family(), path, "migration file")
}

func (r *MigrationResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	matches, _ := filepath.Glob(filepath.Join(r.layout.MigrationsDir(), "*.sql"))
	for _, path := range matches {
		m := migrationFileRe.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		decls = append(decls, Declaration{
			URN:        "migration:" + m[1],
			Family:     r.Family(),
			SourcePath: path,
			Context:    "migration file",
		})
	}
	return decls, nil
}
