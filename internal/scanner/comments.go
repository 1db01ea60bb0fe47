package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Comment is one source comment with its 1-based line number.
type Comment struct {
	Text string
	Line int
}

// languages maps file extensions to tree-sitter grammars. Extensions
// without a grammar (e.g. .dart) fall back to a plain line scan.
var languages = map[string]*sitter.Language{
	".go":  golang.GetLanguage(),
	".py":  python.GetLanguage(),
	".ts":  typescript.GetLanguage(),
	".tsx": tsx.GetLanguage(),
}

const commentQuery = `(comment) @comment`

// Comments extracts all comments from a source file's content. Parsing
// goes through the language grammar when one is registered for the file's
// extension, which keeps comment-shaped strings inside string literals out
// of the result. Unknown extensions use a line-prefix scan.
func Comments(path string, src []byte) ([]Comment, error) {
	lang, ok := languages[filepath.Ext(path)]
	if !ok {
		return lineComments(src), nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(commentQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("comment query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var out []Comment
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			// Block comments span lines; emit one entry per line so
			// callers keep accurate line numbers.
			start := int(c.Node.StartPoint().Row) + 1
			for i, line := range strings.Split(c.Node.Content(src), "\n") {
				out = append(out, Comment{Text: line, Line: start + i})
			}
		}
	}
	return out, nil
}

// lineComments collects lines whose first non-blank characters start a
// line comment. Good enough for languages without a registered grammar.
func lineComments(src []byte) []Comment {
	var out []Comment
	for i, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			out = append(out, Comment{Text: trimmed, Line: i + 1})
		}
	}
	return out
}
