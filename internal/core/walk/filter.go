package walk

import (
	"path"
	"path/filepath"
)

type Filter struct {
	opts Options
	ig   *ignoreMatcher
}

// NewFilter reads root's .gitignore (unless opts.ScanAll) and returns a
// filter over paths relative to root.
func NewFilter(root string, opts Options) (*Filter, error) {
	ig, err := loadIgnoreMatcher(root, opts.ScanAll)
	if err != nil {
		return nil, err
	}
	return &Filter{opts: opts, ig: ig}, nil
}

func (f *Filter) ShouldInclude(rel string, isDir bool) bool {
	if f == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	name := path.Base(rel)

	if !f.opts.ScanAll {
		if isHidden(name) {
			return false
		}
		if isDir && isDefaultSkippedDir(name) {
			return false
		}
		if f.ig.isIgnored(rel, isDir) {
			return false
		}
	}
	if isDir {
		return true
	}
	return !anyGlobMatch(f.opts.ExcludeGlobs, rel)
}
