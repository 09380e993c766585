package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopeidx/internal/config"
	"scopeidx/internal/core/walk"
	"scopeidx/internal/model"
)

func TestDatabaseGlobs(t *testing.T) {
	assert.Equal(t, []string{"cscope.out", "cscope.out.*", "cscope.*.out", "cscope.files"}, DatabaseGlobs("cscope.out"))
	assert.Equal(t, []string{"tags.db", "tags.db.*", "tags.*.db", "cscope.files"}, DatabaseGlobs("/tmp/x/tags.db"))
	assert.Equal(t, []string{"tags", "tags.*", "cscope.files"}, DatabaseGlobs("tags"))
	assert.Nil(t, DatabaseGlobs(" "))
}

func TestDatabaseGlobs_ExcludeInvertedIndex(t *testing.T) {
	f, err := walk.NewFilter(t.TempDir(), walk.Options{ExcludeGlobs: DatabaseGlobs("cscope.out")})
	require.NoError(t, err)
	for _, name := range []string{"cscope.out", "cscope.in.out", "cscope.po.out", "cscope.out.tmp", "cscope.files"} {
		assert.False(t, f.ShouldInclude(name, false), name)
	}
	assert.True(t, f.ShouldInclude("main.c", false))
}

func TestOpen_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.QueueCapacity = 0
	_, err := Open(cfg, nil)
	assert.Error(t, err)

	_, err = Open(nil, nil)
	assert.Error(t, err)
}

func TestOpen_NoJournal(t *testing.T) {
	cfg := config.Default()
	cfg.Journal = "none"
	cfg.Resolve(t.TempDir())

	ws, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	assert.Nil(t, ws.Journal)
	runs, err := ws.Service.History("", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestWorkspace_BuildQueryJournal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	root := t.TempDir()
	tool := filepath.Join(root, "fakescope")
	script := "#!/bin/sh\ncase \"$*\" in\n  *-b*) echo ok ;;\n  *) echo 'a.c f 1 void f(void)' ;;\nesac\n"
	require.NoError(t, os.WriteFile(tool, []byte(script), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte("void f(void)\n"), 0o644))

	cfg := config.Default()
	cfg.Executable = tool
	cfg.Resolve(root)

	ws, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	require.NotNil(t, ws.Journal)
	assert.Equal(t, "sqlite", ws.Journal.Backend())

	assert.Equal(t, "ok", ws.Service.Build(context.Background()))
	items := ws.Service.Query(context.Background(), model.KindSymbol, "f")
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Col)
	assert.Equal(t, ".", items[0].Label)

	runs, err := ws.Service.History("", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestWorkspace_WatchTriggersRebuild(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Journal = "none"
	cfg.WatchDebounce = 50 * time.Millisecond
	cfg.Resolve(root)

	ws, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	rebuilt := make(chan struct{}, 4)
	w, err := ws.Watch(func(ctx context.Context) string {
		rebuilt <- struct{}{}
		return "ok"
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.c"), []byte("int x;\n"), 0o644))

	select {
	case <-rebuilt:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild within 3s")
	}
}
