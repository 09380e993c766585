// Package scope drives the external indexer across every configured
// workspace directory.
//
// Build and Query never fail: a directory that fails is logged and either
// reported inline (Build) or contributes no items (Query). Directories are
// processed one at a time, in configuration order.
package scope

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"scopeidx/internal/config"
	"scopeidx/internal/core/buildq"
	"scopeidx/internal/core/parse"
	"scopeidx/internal/core/runner"
	"scopeidx/internal/core/textsrc"
	"scopeidx/internal/journal/store"
	"scopeidx/internal/logsink"
	"scopeidx/internal/model"
)

const (
	defaultExecutable = "cscope"
	defaultDatabase   = "cscope.out"

	maxJournalOutput = 4096
)

// ConfigProvider returns a setting by key, "" when absent.
type ConfigProvider interface {
	Get(key string) string
}

type DirProvider interface {
	AllDirectories() []string
	CurrentDirectory() string
}

type Runner interface {
	Run(ctx context.Context, name string, args []string, dir string) (string, error)
	Stream(ctx context.Context, name string, args []string, dir string, onLine func(line string)) (string, error)
}

type Options struct {
	Config ConfigProvider
	Dirs   DirProvider

	Logger  logsink.Logger
	Runner  Runner
	Queue   *buildq.Queue
	Text    textsrc.Provider
	Journal store.Store
}

type Service struct {
	cfg     ConfigProvider
	dirs    DirProvider
	log     logsink.Logger
	runner  Runner
	queue   *buildq.Queue
	text    textsrc.Provider
	journal store.Store

	mu       sync.Mutex
	buildCmd string
	queryCmd string
}

func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config provider is required")
	}
	if opts.Dirs == nil {
		return nil, fmt.Errorf("directory provider is required")
	}

	s := &Service{
		cfg:     opts.Config,
		dirs:    opts.Dirs,
		log:     opts.Logger,
		runner:  opts.Runner,
		queue:   opts.Queue,
		text:    opts.Text,
		journal: opts.Journal,
	}
	if s.log == nil {
		s.log = logsink.Discard()
	}
	if s.runner == nil {
		s.runner = runner.New(runner.Options{Logger: s.log})
	}
	if s.queue == nil {
		s.queue = buildq.New(buildq.DefaultCapacity)
	}
	if s.text == nil {
		s.text = textsrc.New(nil, 0)
	}
	return s, nil
}

// Build indexes every directory and returns one report segment per
// directory joined by newlines: the tool's stdout, or "Error: <message>".
func (s *Service) Build(ctx context.Context) string {
	dirs := s.dirs.AllDirectories()
	segments := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		out, err := s.buildDir(ctx, dir)
		if err != nil {
			s.log.Err("build failed:", dir, err.Error())
			segments = append(segments, "Error: "+err.Error())
			continue
		}
		segments = append(segments, out)
	}
	return strings.Join(segments, "\n")
}

// Query runs one lookup per directory and concatenates the parsed items,
// directory order outer, output order inner.
func (s *Service) Query(ctx context.Context, kind model.QueryKind, word string) []model.Item {
	items := []model.Item{}
	if !kind.Valid() {
		s.log.Err("query failed: unknown kind", string(kind))
		return items
	}

	root := s.dirs.CurrentDirectory()
	for _, dir := range s.dirs.AllDirectories() {
		got, err := s.queryDir(ctx, dir, Label(root, dir), kind, word)
		if err != nil {
			s.log.Err("query failed:", dir, err.Error())
			continue
		}
		items = append(items, got...)
	}
	return items
}

// BuildCmd returns the most recent build command line, space-joined.
func (s *Service) BuildCmd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildCmd
}

// QueryCmd returns the most recent query command line, space-joined.
func (s *Service) QueryCmd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryCmd
}

// LastCommand is BuildCmd or QueryCmd for op, falling back to the journal
// when this process has not run one yet.
func (s *Service) LastCommand(op string) string {
	var cur string
	switch op {
	case model.OpBuild:
		cur = s.BuildCmd()
	case model.OpQuery:
		cur = s.QueryCmd()
	default:
		return ""
	}
	if cur != "" || s.journal == nil {
		return cur
	}
	run, ok, err := s.journal.Last(op)
	if err != nil {
		s.log.Err("journal:", err.Error())
		return ""
	}
	if !ok {
		return ""
	}
	return run.CommandLine
}

// History lists journaled runs, filtered by text when it is non-empty.
func (s *Service) History(text string, limit int) ([]model.Run, error) {
	if s.journal == nil {
		return []model.Run{}, nil
	}
	if strings.TrimSpace(text) == "" {
		return s.journal.List(limit)
	}
	return s.journal.Search(text, limit)
}

func (s *Service) Directories() []string {
	return s.dirs.AllDirectories()
}

func (s *Service) Database() string {
	db := strings.TrimSpace(s.cfg.Get(config.KeyDatabase))
	if db == "" {
		return defaultDatabase
	}
	return db
}

func (s *Service) buildDir(ctx context.Context, dir string) (string, error) {
	name := s.executable()
	args := append(strings.Fields(s.cfg.Get(config.KeyBuildFlags)), "-f", s.Database())
	cmdline := commandLine(name, args)

	s.mu.Lock()
	s.buildCmd = cmdline
	s.mu.Unlock()

	start := time.Now()
	out, err := s.queue.Run(ctx, func(ctx context.Context) (string, error) {
		return s.runner.Run(ctx, name, args, dir)
	})

	run := model.Run{
		Op:          model.OpBuild,
		Dir:         dir,
		Label:       Label(s.dirs.CurrentDirectory(), dir),
		CommandLine: cmdline,
		OK:          err == nil,
		Output:      out,
	}
	if err != nil {
		run.Output = err.Error()
	}
	s.record(run, start)
	return out, err
}

func (s *Service) queryDir(ctx context.Context, dir, label string, kind model.QueryKind, word string) ([]model.Item, error) {
	name := s.executable()
	args := append(strings.Fields(s.cfg.Get(config.KeyQueryFlags)), "-f", s.Database(), kind.Flag(), word)
	cmdline := commandLine(name, args)

	s.mu.Lock()
	s.queryCmd = cmdline
	s.mu.Unlock()

	req := parse.Request{Kind: kind, Pattern: word, Label: label, Root: dir}
	var items []model.Item
	start := time.Now()
	_, err := s.runner.Stream(ctx, name, args, dir, func(line string) {
		item, perr := parse.Parse(line, req, s.text)
		if perr == nil {
			items = append(items, item)
			return
		}
		var oe *parse.OpenError
		switch {
		case errors.Is(perr, parse.ErrNoise):
		case errors.As(perr, &oe):
			s.log.Err("skipped:", perr.Error())
		default:
			s.log.Info("skipped:", perr.Error())
		}
	})

	run := model.Run{
		Op:          model.OpQuery,
		Dir:         dir,
		Label:       label,
		Kind:        string(kind),
		Word:        word,
		CommandLine: cmdline,
		OK:          err == nil,
		Items:       len(items),
	}
	if err != nil {
		run.Output = err.Error()
		run.Items = 0
	}
	s.record(run, start)

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) record(run model.Run, start time.Time) {
	if s.journal == nil {
		return
	}
	run.ID = uuid.NewString()
	run.StartedAt = start.UnixMilli()
	run.DurationMS = time.Since(start).Milliseconds()
	run.Output = truncate(run.Output, maxJournalOutput)
	if err := s.journal.Append(run); err != nil {
		s.log.Err("journal:", err.Error())
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (s *Service) executable() string {
	name := strings.TrimSpace(s.cfg.Get(config.KeyExecutable))
	if name == "" {
		return defaultExecutable
	}
	return name
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// Label names dir relative to root in slash form: "." for root itself and
// the cleaned dir when no relative path exists.
func Label(root, dir string) string {
	if strings.TrimSpace(root) == "" {
		return filepath.ToSlash(filepath.Clean(dir))
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(dir))
	}
	return filepath.ToSlash(rel)
}

// IsQueueFull reports whether err came from a saturated build queue.
func IsQueueFull(err error) bool {
	return errors.Is(err, buildq.ErrQueueFull)
}

var _ Runner = (*runner.Runner)(nil)
