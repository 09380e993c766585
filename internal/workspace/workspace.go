// Package workspace assembles a scope.Service and its collaborators from a
// loaded configuration.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"scopeidx/internal/config"
	"scopeidx/internal/core/buildq"
	"scopeidx/internal/core/runner"
	"scopeidx/internal/core/scope"
	"scopeidx/internal/core/textsrc"
	"scopeidx/internal/core/watch"
	"scopeidx/internal/journal/backend"
	"scopeidx/internal/journal/store"
	"scopeidx/internal/logsink"
)

const textCacheSize = 256

type Workspace struct {
	Config  *config.Config
	Service *scope.Service
	Journal store.Store

	log  *logsink.Sink
	text *textsrc.FS
}

func Open(cfg *config.Config, log *logsink.Sink) (*Workspace, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logsink.Discard()
	}

	jpath := cfg.JournalPath
	if strings.TrimSpace(jpath) == "" {
		jpath = backend.DefaultPath(cfg.Root, cfg.Journal)
	}
	journal, err := backend.Open(cfg.Journal, jpath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	text := textsrc.New(nil, textCacheSize)
	opts := scope.Options{
		Config:  cfg,
		Dirs:    cfg,
		Logger:  log.With("scope"),
		Runner:  runner.New(runner.Options{Logger: log.With("runner"), Timeout: cfg.Timeout}),
		Queue:   buildq.New(cfg.QueueCapacity),
		Text:    text,
		Journal: journal,
	}
	svc, err := scope.New(opts)
	if err != nil {
		if journal != nil {
			_ = journal.Close()
		}
		return nil, err
	}

	return &Workspace{Config: cfg, Service: svc, Journal: journal, log: log, text: text}, nil
}

func (w *Workspace) Close() error {
	if w == nil || w.Journal == nil {
		return nil
	}
	return w.Journal.Close()
}

// Watch returns a watcher over every configured directory. Each debounced
// batch drops cached file text for the changed paths and calls rebuild.
func (w *Workspace) Watch(rebuild func(ctx context.Context) string) (*watch.Watcher, error) {
	if rebuild == nil {
		rebuild = w.Service.Build
	}
	log := w.log.With("watch")
	return watch.New(w.Config.AllDirectories(), watch.Options{
		Debounce:         w.Config.WatchDebounce,
		AdaptiveDebounce: true,
		DebounceMin:      w.Config.WatchDebounce,
		ExcludeGlobs:     DatabaseGlobs(w.Service.Database()),
		Logger:           log,
		OnChange: func(paths []string) {
			for _, p := range paths {
				w.text.Invalidate(p)
			}
			log.Info("changed:", len(paths), "paths, rebuilding")
			report := rebuild(context.Background())
			if strings.Contains(report, "Error: ") {
				log.Err("rebuild:", report)
			}
		},
	})
}

// DatabaseGlobs matches the index database and the companion files the
// indexer writes next to it, including the inverted index pair
// (<stem>.in<ext>, <stem>.po<ext>) written with -q.
func DatabaseGlobs(database string) []string {
	base := filepath.Base(strings.TrimSpace(database))
	if base == "" || base == "." {
		return nil
	}
	globs := []string{base, base + ".*"}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		globs = append(globs, strings.TrimSuffix(base, ext)+".*"+ext)
	}
	return append(globs, "cscope.files")
}
