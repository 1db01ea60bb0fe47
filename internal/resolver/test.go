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
	urnHeaderRe      = regexp.MustCompile(`(?:#|//)\s*[Uu][Rr][Nn]:\s*(\S+)`)
	acceptanceLineRe = regexp.MustCompile(`(?:#|//)\s*[Aa]cceptance:\s*(\S+)`)
	wmbtLineRe       = regexp.MustCompile(`(?:#|//)\s*[Ww][Mm][Bb][Tt]:\s*(\S+)`)
	trainLineRe      = regexp.MustCompile(`(?:#|//)\s*[Tt]rain:\s*(\S+)`)
	phaseLineRe      = regexp.MustCompile(`(?:#|//)\s*[Pp]hase:\s*(RED|GREEN|REFACTOR)`)
	testLayerLineRe  = regexp.MustCompile(`(?:#|//)\s*[Ll]ayer:\s*(presentation|application|domain|integration|assembly)`)

	acceptanceFormRe = regexp.MustCompile(`^test:[a-z][a-z0-9-]*:[a-z][a-z0-9-]*:[A-Z]`)

	testFilePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^test_.*\.py$`),
		regexp.MustCompile(`^.*_test\.py$`),
		regexp.MustCompile(`^.*_test\.dart$`),
		regexp.MustCompile(`^.*\.test\.tsx?$`),
		regexp.MustCompile(`^.*\.spec\.ts$`),
	}
)

// TestHeader holds the metadata block a test file declares in its leading
// comments. Only TestURN is mandatory for a file to count as declared.
type TestHeader struct {
	TestURN    string
	Acceptance string
	WMBT       string
	Train      string
	Phase      string
	Layer      string
	Form       string // acceptance | journey | legacy
}

// TestResolver maps test: URNs to test files by comment-header equality.
// There is no path-based derivation: a test exists only where a file
// declares its URN.
type TestResolver struct {
	layout *config.Layout
}

func NewTestResolver(l *config.Layout) *TestResolver { return &TestResolver{layout: l} }

func (r *TestResolver) Family() string { return urn.FamilyTest }
func (r *TestResolver) CanResolve(u string) bool { return hasFamilyPrefix(u, r.Family()) }

func (r *TestResolver) Resolve(u string) Resolution {
	if !r.CanResolve(u) {
		return errResolution(u, r.Family(), "not a test URN")
	}
	if msg := checkFormat(u, r.Family()); msg != "" {
		return errResolution(u, r.Family(), msg)
	}

	var paths []string
	r.forEachTestFile(func(path string, comments []scanner.Comment) {
		for _, c := range comments {
			m := urnHeaderRe.FindStringSubmatch(c.Text)
			if m != nil && m[1] == u {
				paths = append(paths, path)
				return
			}
		}
	})
	return pathsResolution(u, r.Family(), paths, "test file not found for: "+u)
}

// ParseTestHeader extracts header metadata from a test file's comments.
// The first test: URN wins; later metadata lines overwrite earlier ones.
func ParseTestHeader(comments []scanner.Comment) TestHeader {
	var h TestHeader
	for _, c := range comments {
		if m := urnHeaderRe.FindStringSubmatch(c.Text); m != nil {
			candidate := m[1]
			if !regexMetaRe.MatchString(candidate) &&
				strings.HasPrefix(candidate, "test:") && h.TestURN == "" {
				h.TestURN = candidate
				h.Form = headerForm(candidate)
			}
		}
		if m := acceptanceLineRe.FindStringSubmatch(c.Text); m != nil {
			h.Acceptance = m[1]
		}
		if m := wmbtLineRe.FindStringSubmatch(c.Text); m != nil {
			h.WMBT = m[1]
		}
		if m := trainLineRe.FindStringSubmatch(c.Text); m != nil {
			h.Train = m[1]
		}
		if m := phaseLineRe.FindStringSubmatch(c.Text); m != nil {
			h.Phase = m[1]
		}
		if m := testLayerLineRe.FindStringSubmatch(c.Text); m != nil {
			h.Layer = m[1]
		}
	}
	return h
}

func headerForm(testURN string) string {
	switch {
	case strings.HasPrefix(testURN, "test:train:"):
		return urn.TestFormJourney
	case acceptanceFormRe.MatchString(testURN):
		return urn.TestFormAcceptance
	default:
		return urn.TestFormLegacy
	}
}

func (r *TestResolver) FindDeclarations() ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	seen := map[string]bool{}

	r.forEachTestFileDiag(func(path string, comments []scanner.Comment) {
		header := ParseTestHeader(comments)
		for _, c := range comments {
			m := urnHeaderRe.FindStringSubmatch(c.Text)
			if m == nil {
				continue
			}
			candidate := m[1]
			if regexMetaRe.MatchString(candidate) || !strings.HasPrefix(candidate, "test:") {
				continue
			}
			if seen[candidate] {
				continue
			}
			seen[candidate] = true
			decls = append(decls, Declaration{
				URN:        candidate,
				Family:     r.Family(),
				SourcePath: path,
				Line:       c.Line,
				Context:    "test file (" + header.Form + " format)",
			})
		}
	}, &diags)
	return decls, diags
}

func (r *TestResolver) forEachTestFile(fn func(path string, comments []scanner.Comment)) {
	var diags []Diagnostic
	r.forEachTestFileDiag(fn, &diags)
}

func (r *TestResolver) forEachTestFileDiag(fn func(path string, comments []scanner.Comment), diags *[]Diagnostic) {
	_ = scanner.Walk(r.layout.Root, componentExts, func(path string) error {
		if !isTestFile(filepath.Base(path)) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			*diags = append(*diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		comments, err := scanner.Comments(path, src)
		if err != nil {
			*diags = append(*diags, Diagnostic{Path: path, Err: err})
			return nil
		}
		fn(path, comments)
		return nil
	})
}

func isTestFile(name string) bool {
	for _, p := range testFilePatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
