// Package config loads scopeidx settings and serves them to the core as the
// Config and Directory providers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultFile = ".sidx.yaml"

// Provider keys.
const (
	KeyExecutable = "executable"
	KeyDatabase   = "database"
	KeyBuildFlags = "buildFlags"
	KeyQueryFlags = "queryFlags"
)

type Config struct {
	Executable    string        `yaml:"executable"`
	Database      string        `yaml:"database"`
	BuildFlags    string        `yaml:"build_flags"`
	QueryFlags    string        `yaml:"query_flags"`
	Directories   []string      `yaml:"directories"`
	Root          string        `yaml:"root"`
	QueueCapacity int           `yaml:"queue_capacity"`
	Timeout       time.Duration `yaml:"timeout"`
	Journal       string        `yaml:"journal"`
	JournalPath   string        `yaml:"journal_path"`
	LogFormat     string        `yaml:"log_format"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	Listen        string        `yaml:"listen"`
}

func Default() *Config {
	return &Config{
		Executable:    "cscope",
		Database:      "cscope.out",
		BuildFlags:    "-R -b",
		QueryFlags:    "-d -L",
		QueueCapacity: 2,
		Journal:       "sqlite",
		JournalPath:   filepath.Join(".sidx", "journal.db"),
		LogFormat:     "text",
		WatchDebounce: 500 * time.Millisecond,
		Listen:        "127.0.0.1:7447",
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	b, err := os.ReadFile(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.Resolve(filepath.Dir(abs))
	return cfg, nil
}

// Resolve makes Root and Directories absolute relative to base.
func (c *Config) Resolve(base string) {
	if strings.TrimSpace(c.Root) == "" {
		c.Root = base
	} else if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(base, c.Root)
	}
	c.Root = filepath.Clean(c.Root)

	dirs := make([]string, 0, len(c.Directories))
	for _, d := range c.Directories {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		dirs = append(dirs, filepath.Clean(d))
	}
	c.Directories = dirs

	if c.JournalPath != "" && !filepath.IsAbs(c.JournalPath) {
		c.JournalPath = filepath.Join(c.Root, c.JournalPath)
	}
}

func (c *Config) Validate() error {
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be >= 1")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.Journal)) {
	case "", "none", "off", "sqlite", "sqlite3", "bleve":
	default:
		return fmt.Errorf("invalid journal %q (expected: sqlite|bleve|none)", c.Journal)
	}
	return nil
}

// Get returns the setting named key, or "" when it is unknown or unset.
func (c *Config) Get(key string) string {
	if c == nil {
		return ""
	}
	switch key {
	case KeyExecutable:
		return c.Executable
	case KeyDatabase:
		return c.Database
	case KeyBuildFlags:
		return c.BuildFlags
	case KeyQueryFlags:
		return c.QueryFlags
	default:
		return ""
	}
}

// AllDirectories returns the configured workspace directories in order,
// or the root alone when none are configured.
func (c *Config) AllDirectories() []string {
	if len(c.Directories) == 0 {
		return []string{c.Root}
	}
	return append([]string(nil), c.Directories...)
}

func (c *Config) CurrentDirectory() string {
	return c.Root
}
