// Package watch rebuilds the index when files under the workspace
// directories change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scopeidx/internal/core/walk"
	"scopeidx/internal/logsink"
)

type Options struct {
	Debounce         time.Duration
	AdaptiveDebounce bool
	DebounceMin      time.Duration
	DebounceMax      time.Duration

	// ExcludeGlobs drop matching files, typically the index database and
	// its companions.
	ExcludeGlobs []string
	ScanAll      bool

	Logger logsink.Logger

	// OnChange receives each debounced batch of absolute paths.
	OnChange func(paths []string)
}

type root struct {
	abs    string
	filter *walk.Filter
}

type Watcher struct {
	roots     []root
	log       logsink.Logger
	debouncer *Debouncer
	debounce  time.Duration

	watcher   *fsnotify.Watcher
	closeOnce sync.Once
	closed    chan struct{}
}

func New(dirs []string, opts Options) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if opts.OnChange == nil {
		return nil, fmt.Errorf("OnChange is required")
	}

	roots := make([]root, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(strings.TrimSpace(d))
		if err != nil {
			return nil, err
		}
		abs = filepath.Clean(abs)
		filter, err := walk.NewFilter(abs, walk.Options{
			ExcludeGlobs: opts.ExcludeGlobs,
			ScanAll:      opts.ScanAll,
		})
		if err != nil {
			return nil, err
		}
		roots = append(roots, root{abs: abs, filter: filter})
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	minDelay := opts.DebounceMin
	if minDelay <= 0 {
		minDelay = 100 * time.Millisecond
	}
	maxDelay := opts.DebounceMax
	if maxDelay < minDelay {
		maxDelay = 2 * time.Second
	}

	log := opts.Logger
	if log == nil {
		log = logsink.Discard()
	}

	w := &Watcher{
		roots:     roots,
		log:       log,
		debouncer: NewDebouncer(debounce),
		debounce:  debounce,
		watcher:   fsw,
		closed:    make(chan struct{}),
	}
	if opts.AdaptiveDebounce {
		// Large bursts (checkouts, rebases) wait longer before rebuilding.
		w.debouncer.SetDelayFunc(func(count int) time.Duration {
			switch {
			case count <= 10:
				return minDelay
			case count <= 100:
				return minDelay * 4
			default:
				return maxDelay
			}
		})
	}
	w.debouncer.OnFire(opts.OnChange)

	for _, r := range roots {
		if err := w.addTree(r, r.abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) Debounce() time.Duration {
	if w == nil {
		return 0
	}
	return w.debounce
}

func (w *Watcher) Dirs() []string {
	out := make([]string, 0, len(w.roots))
	for _, r := range w.roots {
		out = append(out, r.abs)
	}
	return out
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() { close(w.closed) })
	w.debouncer.Stop()
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// Run delivers events until ctx is done, Close is called or the underlying
// watcher reports an error.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.watcher == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closed:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	r, rel, ok := w.locate(ev.Name)
	if !ok {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			if !r.filter.ShouldInclude(rel, true) {
				return
			}
			if err := w.addTree(r, ev.Name); err != nil {
				w.log.Err("watch:", ev.Name, err.Error())
			}
			w.debouncer.Push(ev.Name)
			return
		}
	}

	if !r.filter.ShouldInclude(rel, false) {
		return
	}
	w.debouncer.Push(filepath.Clean(ev.Name))
}

// locate finds the innermost root containing abs.
func (w *Watcher) locate(abs string) (root, string, bool) {
	if strings.TrimSpace(abs) == "" {
		return root{}, "", false
	}
	abs = filepath.Clean(abs)

	var best root
	bestRel := ""
	found := false
	for _, r := range w.roots {
		rel, err := filepath.Rel(r.abs, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if !found || len(r.abs) > len(best.abs) {
			best, bestRel, found = r, filepath.ToSlash(rel), true
		}
	}
	return best, bestRel, found
}

func (w *Watcher) addTree(r root, dir string) error {
	dirs, err := walk.Dirs(dir, &subFilter{root: r, base: dir})
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// subFilter re-roots relative paths under base onto the watched root so a
// newly created subtree is filtered like the rest of the workspace.
type subFilter struct {
	root root
	base string
}

func (s *subFilter) ShouldInclude(rel string, isDir bool) bool {
	full, err := filepath.Rel(s.root.abs, filepath.Join(s.base, rel))
	if err != nil {
		return false
	}
	return s.root.filter.ShouldInclude(full, isDir)
}
