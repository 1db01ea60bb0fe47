package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/scanner"
	"urntrace/internal/urn"
)

var (
	componentHeaderRe = regexp.MustCompile(`(?:#|//)\s*[Uu][Rr][Nn]:\s*(component:\S+)`)

	// Comments quoting regex patterns can look like URN headers; a
	// metacharacter in the candidate rules it out.
	regexMetaRe = regexp.MustCompile(`[\[\]\(\)\*\+\?\{\}\^\$\\]`)

	camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymTailRe   = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

var componentExts = []string{".py", ".dart", ".ts", ".tsx"}

// sideDirs maps a component URN side to the source roots it may live
// under, relative to the repository root.
var sideDirs = map[string][]string{
	"frontend": {"lib", "src"},
	"fe":       {"lib", "src"},
	"backend":  {"python", "src"},
	"be":       {"python", "src"},
}

// layerDirs maps a component layer to the directory names that convention
// allows for it.
var layerDirs = map[string][]string{
	"presentation": {"presentation", "views", "widgets"},
	"application":  {"application", "services", "usecases"},
	"domain":       {"domain", "models", "entities"},
	"integration":  {"integration", "repositories", "adapters"},
	"assembly":     {"assembly", ""},
}

// ComponentResolver maps component:{wagon}:{feature}:{name}:{side}:{layer}
// to source files. Files are matched by stem against the component name;
// declarations come from URN comment headers in code.
type ComponentResolver struct {
	layout *config.Layout
}

func NewComponentResolver(l *config.Layout) *ComponentResolver {
	return &ComponentResolver{layout: l}
}

func (r *ComponentResolver) Family() string { return urn.FamilyComponent }
func (r *ComponentResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *ComponentResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a component URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}

	p, err := urn.Parse(u)
	if err != nil {
		return errResolution(u, r.Family(), err.Error())
	}
	if p.Wagon == "" || p.Feature == "" || p.Name == "" || p.Side == "" || p.Layer == "" {
		return errResolution(u, r.Family(), "invalid component URN format")
	}

	var paths []string
	if p.Wagon == urn.ReservedTrainsSlug {
		paths = r.findTrainInfraFiles(p.Feature, p.Name)
	} else {
		paths = r.findComponentFiles(p)
	}
	return pathsResolution(u, r.Family(), paths, "component file not found for: "+u)
}

func (r *ComponentResolver) findComponentFiles(p urn.Parsed) []string {
	var paths []string
	for _, sideDir := range sideDirs[p.Side] {
		baseDir := filepath.Join(r.layout.Root, sideDir)
		if !dirExists(baseDir) {
			continue
		}

		for _, layerDir := range layerDirs[p.Layer] {
			searchPaths := []string{
				filepath.Join(baseDir, underscored(p.Wagon), underscored(p.Feature), layerDir),
				filepath.Join(baseDir, "features", underscored(p.Feature), layerDir),
				filepath.Join(baseDir, underscored(p.Wagon), layerDir),
			}
			// Assembly components may sit at the feature root.
			if p.Layer == "assembly" {
				searchPaths = append(searchPaths,
					filepath.Join(baseDir, underscored(p.Wagon), underscored(p.Feature)))
			}
			for _, dir := range searchPaths {
				paths = append(paths, matchStemsInDir(dir, p.Name)...)
			}
		}
	}
	return paths
}

// findTrainInfraFiles resolves component:trains:* under the trains source
// tree, first in the feature subdirectory and then at the tree root.
func (r *ComponentResolver) findTrainInfraFiles(feature, name string) []string {
	var paths []string
	trainsDir := r.layout.TrainsDir()
	if !dirExists(trainsDir) {
		return nil
	}
	for _, dir := range []string{filepath.Join(trainsDir, underscored(feature)), trainsDir} {
		paths = append(paths, matchStemsInDir(dir, name)...)
	}
	return paths
}

// matchStemsInDir returns source files in dir (non-recursive) whose stem
// matches the component name.
func matchStemsInDir(dir, name string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !containsString(componentExts, ext) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if stemMatch(name, full) {
			paths = append(paths, full)
		}
	}
	return paths
}

// stemMatch reports whether the file stem equals the component name after
// normalization. PascalCase becomes snake_case; an already-lowercase name
// matches directly. Exact stem equality only, never substring.
func stemMatch(componentName, path string) bool {
	s := strings.ToLower(stem(path))

	target := strings.ReplaceAll(componentName, ".", "_")
	target = camelBoundaryRe.ReplaceAllString(target, "${1}_${2}")
	target = acronymTailRe.ReplaceAllString(target, "${1}_${2}")
	target = strings.ToLower(target)

	direct := strings.NewReplacer(".", "_", "-", "_").Replace(strings.ToLower(componentName))
	return s == target || s == direct
}

func (r *ComponentResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic

	_ = scanner.Walk(r.layout.Root, componentExts, func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		comments, err := scanner.Comments(path, src)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		for _, c := range comments {
			m := componentHeaderRe.FindStringSubmatch(c.Text)
			if m == nil {
				continue
			}
			candidate := m[1]
			if regexMetaRe.MatchString(candidate) {
				continue
			}
			decls = append(decls, Declaration{
				URN:        candidate,
				Family:     r.Family(),
				SourcePath: path,
				Line:       c.Line,
				Context:    "code comment",
			})
		}
		return nil
	})
	return decls, diags
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
