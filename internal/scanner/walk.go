// Package scanner walks repository trees and extracts comment lines from
// source files. Resolvers use it to find URN declarations embedded in
// comment headers without tripping over URN-shaped strings in code.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// skipDirs are pruned before recursion so the walk never enters vendored
// or generated trees.
var skipDirs = map[string]bool{
	".git": true, "__pycache__": true, "node_modules": true,
	".dart_tool": true, "build": true, ".pub-cache": true, "dist": true,
	".next": true, ".nuxt": true, "coverage": true, ".venv": true,
	"venv": true, "env": true, ".tox": true, ".mypy_cache": true,
	".pytest_cache": true, "vendor": true, "testdata": true,
}

// Walk visits every file under root whose name ends in one of exts,
// pruning vendored directories. The callback's error is returned to the
// caller untouched; fs errors on individual entries are skipped so one
// unreadable directory never aborts the walk.
func Walk(root string, exts []string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(d.Name(), ext) {
				return fn(path)
			}
		}
		return nil
	})
}
