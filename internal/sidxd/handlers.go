package sidxd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"scopeidx/internal/core/cache"
	"scopeidx/internal/core/watch"
	"scopeidx/internal/model"
	"scopeidx/internal/workspace"
)

const queryCacheSize = 128

type Handlers struct {
	ws    *workspace.Workspace
	cache *cache.LRU[[]model.Item]
	// gen counts finished builds; a query only caches if none finished
	// while it ran.
	gen atomic.Uint64

	mu          sync.Mutex
	watcher     *watch.Watcher
	watchCancel context.CancelFunc
}

func NewHandlers(ws *workspace.Workspace) *Handlers {
	return &Handlers{
		ws:    ws,
		cache: cache.NewLRU[[]model.Item](queryCacheSize),
	}
}

// Build rebuilds every directory and drops cached query results on both
// sides of the build.
func (h *Handlers) Build(ctx context.Context) BuildResult {
	h.cache.Purge()
	report := h.ws.Service.Build(ctx)
	h.gen.Add(1)
	h.cache.Purge()
	return BuildResult{Report: report}
}

func (h *Handlers) Query(ctx context.Context, p QueryParams) (QueryResult, error) {
	kind, err := model.ParseQueryKind(p.Kind)
	if err != nil {
		return QueryResult{}, err
	}
	word := p.Word
	if strings.TrimSpace(word) == "" {
		return QueryResult{}, fmt.Errorf("word is required")
	}

	key := string(kind) + "\x00" + word
	if items, ok := h.cache.Get(key); ok {
		return QueryResult{Items: items, Cached: true}, nil
	}
	gen := h.gen.Load()
	items := h.ws.Service.Query(ctx, kind, word)
	if h.gen.Load() == gen {
		h.cache.Put(key, items)
	}
	return QueryResult{Items: items}, nil
}

func (h *Handlers) CmdLast() CmdLastResult {
	return CmdLastResult{
		Build: h.ws.Service.LastCommand(model.OpBuild),
		Query: h.ws.Service.LastCommand(model.OpQuery),
	}
}

func (h *Handlers) History(p HistoryParams) ([]model.Run, error) {
	runs, err := h.ws.Service.History(p.Search, p.Limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []model.Run{}
	}
	return runs, nil
}

func (h *Handlers) WatchStart() (WatchStatusResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		return h.statusLocked(), nil
	}

	w, err := h.ws.Watch(func(ctx context.Context) string {
		return h.Build(ctx).Report
	})
	if err != nil {
		return WatchStatusResult{}, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.watcher = w
	h.watchCancel = cancel
	go func() {
		_ = w.Run(ctx)
	}()
	return h.statusLocked(), nil
}

func (h *Handlers) WatchStop() WatchStatusResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	return h.statusLocked()
}

func (h *Handlers) WatchStatus() WatchStatusResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked()
}

func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *Handlers) stopLocked() {
	if h.watcher == nil {
		return
	}
	h.watchCancel()
	_ = h.watcher.Close()
	h.watcher = nil
	h.watchCancel = nil
}

func (h *Handlers) statusLocked() WatchStatusResult {
	if h.watcher == nil {
		return WatchStatusResult{}
	}
	return WatchStatusResult{Running: true, Dirs: h.watcher.Dirs()}
}
