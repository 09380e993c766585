package walk

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFile lists extra gitignore-syntax patterns that only sidx honours.
const IgnoreFile = ".sidxignore"

type ignoreMatcher struct {
	matcher gitignore.Matcher
}

func loadIgnoreMatcher(root string, scanAll bool) (*ignoreMatcher, error) {
	if scanAll {
		return &ignoreMatcher{}, nil
	}

	fs := osfs.New(root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, err
	}
	extra, err := readIgnoreFile(fs, IgnoreFile)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, extra...)
	if len(patterns) == 0 {
		return &ignoreMatcher{}, nil
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

func readIgnoreFile(fs billy.Filesystem, name string) ([]gitignore.Pattern, error) {
	f, err := fs.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []gitignore.Pattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, gitignore.ParsePattern(line, nil))
	}
	return out, sc.Err()
}

func (m *ignoreMatcher) isIgnored(rel string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return false
	}
	return m.matcher.Match(strings.Split(rel, "/"), isDir)
}
