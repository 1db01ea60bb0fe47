package resolver

import (
	"os"
	"regexp"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/scanner"
	"urntrace/internal/urn"
)

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+(?:if\s+not\s+exists\s+)?(\w+)`)

// TableResolver maps table:{name} to the migration files under the
// database directory that create the table. DDL is scanned rather than
// parsed: a CREATE TABLE statement match or a filename-stem mention both
// count as a resolution site.
type TableResolver struct {
	layout *config.Layout
}

func NewTableResolver(l *config.Layout) *TableResolver { return &TableResolver{layout: l} }

func (r *TableResolver) Family() string { return urn.FamilyTable }
func (r *TableResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *TableResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a table URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}
	tableName := strings.TrimPrefix(u, "table:")

	var paths []string
	_ = scanner.Walk(r.layout.DatabaseDir(), []string{".sql"}, func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(src), -1) {
			if m[1] == tableName {
				paths = append(paths, path)
				return nil
			}
		}
		// Migration stems name the tables they touch.
		if strings.Contains(stem(path), tableName) {
			paths = append(paths, path)
		}
		return nil
	})
	return pathsResolution(u, r.Family(), paths, "no migration creates table: "+tableName)
}

func (r *TableResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	seen := map[string]bool{}

	_ = scanner.Walk(r.layout.DatabaseDir(), []string{".sql"}, func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			diags = append(diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		for _, m := range createTableRe.FindAllStringSubmatch(string(src), -1) {
			u := "table:" + strings.ToLower(m[1])
			if seen[u] {
				continue
			}
			seen[u] = true
			decls = append(decls, Declaration{
				URN:        u,
				Family:     r.Family(),
				SourcePath: path,
				Context:    "CREATE TABLE statement",
			})
		}
		return nil
	})
	return decls, diags
}
