// Package walk decides which workspace paths are worth watching.
package walk

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

type Options struct {
	// ExcludeGlobs drop matching files. Patterns without a slash match the
	// base name.
	ExcludeGlobs []string

	// ScanAll disables hidden-name, default-dir and .gitignore skipping.
	ScanAll bool
}

// Includer is satisfied by *Filter.
type Includer interface {
	ShouldInclude(rel string, isDir bool) bool
}

// Dirs lists root and every directory below it that f keeps, as absolute
// paths in lexical order.
func Dirs(root string, f Includer) ([]string, error) {
	root = filepath.Clean(root)
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if !f.ShouldInclude(rel, true) {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDefaultSkippedDir(name string) bool {
	switch name {
	case ".git", ".sidx", "node_modules", "dist", "target", "build":
		return true
	default:
		return false
	}
}

func anyGlobMatch(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matchesGlob(pat, rel) {
			return true
		}
	}
	return false
}

func matchesGlob(pattern string, rel string) bool {
	pat := strings.TrimSpace(pattern)
	if pat == "" {
		return false
	}
	pat = strings.ReplaceAll(pat, "\\", "/")
	rel = filepath.ToSlash(rel)

	// "cscope.out*,*.o" from a single flag value.
	if strings.Contains(pat, ",") {
		for _, piece := range strings.Split(pat, ",") {
			if matchesGlob(strings.TrimSpace(piece), rel) {
				return true
			}
		}
		return false
	}

	if !strings.Contains(pat, "/") {
		ok, _ := path.Match(pat, path.Base(rel))
		return ok
	}

	ok, _ := path.Match(pat, rel)
	return ok
}
