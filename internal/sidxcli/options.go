package sidxcli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scopeidx/internal/config"
	"scopeidx/internal/logsink"
)

type Options struct {
	ConfigPath string
	Executable string
	Database   string
	Dirs       []string
	Journal    string
	Daemon     string
	LogFormat  string
	Verbose    bool
}

func (o *Options) Prepare() error {
	o.normalize()

	switch strings.ToLower(o.Journal) {
	case "", "none", "off", "sqlite", "sqlite3", "bleve":
	default:
		return fmt.Errorf("invalid --journal %q (expected: sqlite|bleve|none)", o.Journal)
	}
	switch o.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid --log-format %q (expected: text|json)", o.LogFormat)
	}
	return nil
}

func (o *Options) normalize() {
	o.ConfigPath = strings.TrimSpace(o.ConfigPath)
	o.Executable = strings.TrimSpace(o.Executable)
	o.Database = strings.TrimSpace(o.Database)
	o.Journal = strings.TrimSpace(o.Journal)
	o.Daemon = strings.TrimSpace(o.Daemon)
	o.LogFormat = strings.ToLower(strings.TrimSpace(o.LogFormat))

	dirs := o.Dirs[:0]
	for _, d := range o.Dirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	o.Dirs = dirs
}

// Config loads the config file and applies flag overrides on top.
func (o *Options) Config() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Executable != "" {
		cfg.Executable = o.Executable
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Journal != "" {
		cfg.Journal = o.Journal
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
	}
	if len(o.Dirs) > 0 {
		dirs := make([]string, 0, len(o.Dirs))
		for _, d := range o.Dirs {
			abs, err := filepath.Abs(d)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, abs)
		}
		cfg.Directories = dirs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *Options) Logger(w io.Writer, format string) *logsink.Sink {
	level := slog.LevelError
	if o.Verbose {
		level = slog.LevelInfo
	}
	return logsink.New(w, logsink.Options{Format: format, Level: level, Component: "sidx"})
}

type optionsKey struct{}

func optionsFrom(cmd *cobra.Command) *Options {
	if cmd == nil {
		return nil
	}
	root := cmd.Root()
	if root == nil {
		root = cmd
	}
	v := root.Context().Value(optionsKey{})
	opts, _ := v.(*Options)
	return opts
}

func bindFlags(cmd *cobra.Command, opts *Options) {
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "config file (default .sidx.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Executable, "executable", "e", opts.Executable, "indexer executable (default cscope)")
	cmd.PersistentFlags().StringVarP(&opts.Database, "database", "f", opts.Database, "index database file name (default cscope.out)")
	cmd.PersistentFlags().StringArrayVarP(&opts.Dirs, "dir", "C", nil, "workspace directory (can repeat)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", opts.Journal, "run journal backend: sqlite|bleve|none")
	cmd.PersistentFlags().StringVar(&opts.Daemon, "daemon", opts.Daemon, "send requests to a running sidxd at this address")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "log format: text|json")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "V", opts.Verbose, "log every tool invocation to stderr")
}

func ExecuteForTest(cmd *cobra.Command) (string, Options, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()

	opts := optionsFrom(cmd)
	if opts == nil {
		return out.String(), Options{}, err
	}
	opts.normalize()

	return out.String(), *opts, err
}

func withOptionsContext(cmd *cobra.Command, opts *Options) {
	cmd.SetContext(context.WithValue(context.Background(), optionsKey{}, opts))
}
