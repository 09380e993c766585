// Package backend selects the run journal implementation by name.
package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"scopeidx/internal/journal/bleve"
	"scopeidx/internal/journal/sqlite"
	"scopeidx/internal/journal/store"
)

const None = "none"

func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "sqlite"
	}
	switch name {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "bleve":
		return "bleve"
	case "none", "off":
		return None
	default:
		return name
	}
}

func DefaultPath(root string, backend string) string {
	switch NormalizeName(backend) {
	case "bleve":
		return filepath.Join(root, ".sidx", "journal.bleve")
	default:
		return filepath.Join(root, ".sidx", "journal.db")
	}
}

// NormalizePath maps a sqlite-style path onto a bleve index directory.
func NormalizePath(backend string, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	clean := filepath.Clean(path)
	if NormalizeName(backend) != "bleve" {
		return clean
	}

	ext := strings.ToLower(filepath.Ext(clean))
	if ext == "" {
		return clean + ".bleve"
	}
	if ext == ".db" {
		return strings.TrimSuffix(clean, filepath.Ext(clean)) + ".bleve"
	}
	return clean
}

// Open returns nil and no error for the "none" backend.
func Open(backend string, path string) (store.Store, error) {
	backend = NormalizeName(backend)
	path = NormalizePath(backend, path)
	switch backend {
	case None:
		return nil, nil
	case "sqlite":
		return sqlite.Open(path)
	case "bleve":
		return bleve.Open(path)
	default:
		return nil, fmt.Errorf("unknown journal backend: %s", backend)
	}
}
