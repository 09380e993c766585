// Package textsrc loads file contents split into lines for highlight
// resolution. Results are cached and revalidated against size and mtime.
package textsrc

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"scopeidx/internal/core/cache"
)

// Provider returns the full text of path, one element per line.
type Provider interface {
	Open(path string) ([]string, error)
}

type fileLines struct {
	size  int64
	mtime int64
	lines []string
}

type FS struct {
	fs    billy.Filesystem
	cache *cache.LRU[fileLines]
}

// New returns a Provider over fs. A nil fs reads the host filesystem.
func New(fs billy.Filesystem, cacheSize int) *FS {
	if fs == nil {
		fs = osfs.New("")
	}
	if cacheSize <= 0 {
		cacheSize = 64
	}
	return &FS{fs: fs, cache: cache.NewLRU[fileLines](cacheSize)}
}

// Open returns the lines of path. The returned slice is shared with the
// cache and must not be modified.
func (p *FS) Open(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	st, err := p.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	size, mtime := st.Size(), st.ModTime().UnixNano()
	if v, ok := p.cache.Get(path); ok && v.size == size && v.mtime == mtime {
		return v.lines, nil
	}

	f, err := p.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	lines := SplitLines(string(b))
	p.cache.Put(path, fileLines{size: size, mtime: mtime, lines: lines})
	return lines, nil
}

// Invalidate drops any cached content for path.
func (p *FS) Invalidate(path string) {
	p.cache.Remove(path)
}

func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
