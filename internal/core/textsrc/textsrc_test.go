package textsrc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MemFS(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/src/a.c", []byte("#include <x.h>\r\nint myFunc(void) {\n}\n"), 0o644))

	p := New(fs, 4)
	lines, err := p.Open("/src/a.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"#include <x.h>", "int myFunc(void) {", "}"}, lines)
}

func TestOpen_Missing(t *testing.T) {
	p := New(memfs.New(), 4)
	_, err := p.Open("/nope.c")
	assert.Error(t, err)

	_, err = p.Open("  ")
	assert.Error(t, err)
}

func TestOpen_Directory(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/src", 0o755))
	_, err := New(fs, 4).Open("/src")
	assert.Error(t, err)
}

func TestOpen_CachesUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))
	stamp := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	p := New(nil, 4)
	lines, err := p.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, lines)

	// Same size and mtime: served from cache.
	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0o644))
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	lines, err = p.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, lines)

	// Size changes: reloaded.
	require.NoError(t, os.WriteFile(path, []byte("three\n"), 0o644))
	lines, err = p.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"three"}, lines)

	p.Invalidate(path)
	lines, err = p.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"three"}, lines)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
}
