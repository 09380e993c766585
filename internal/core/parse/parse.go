// Package parse turns one line of indexer output into a model.Item.
//
// Lines have the form
//
//	<file> <symbol> <line> <text...>
//
// and are split on the first three whitespace characters. File names that
// contain whitespace cannot be represented in this format and mis-parse.
package parse

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"scopeidx/internal/core/textsrc"
	"scopeidx/internal/model"
)

const minLineLen = 3

type Request struct {
	Kind    model.QueryKind
	Pattern string
	Label   string

	// Root resolves relative file paths; usually the directory the tool ran in.
	Root string
}

type fields struct {
	path   string
	symbol string
	line   string
	rest   string
}

// Parse decodes raw into an Item. It returns ErrNoise for lines below the
// minimal length, *ParseError for malformed lines and *OpenError when the
// target file cannot be read.
func Parse(raw string, req Request, text textsrc.Provider) (model.Item, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if utf8.RuneCountInString(raw) < minLineLen {
		return model.Item{}, ErrNoise
	}

	f, ok := split(raw)
	if !ok {
		return model.Item{}, &ParseError{Line: raw, Reason: "expected at least three separators"}
	}

	n, err := strconv.Atoi(f.line)
	if err != nil {
		return model.Item{}, &ParseError{Line: raw, Reason: "line number is not an integer", Cause: err}
	}

	item := model.Item{
		Path:        resolve(req.Root, f.path),
		Symbol:      f.symbol,
		Line:        n - 1,
		Description: f.rest,
		Label:       req.Label,
	}

	lines, err := text.Open(item.Path)
	if err != nil {
		return model.Item{}, &OpenError{Path: item.Path, Cause: err}
	}

	needle := req.Pattern
	if req.Kind == model.KindCallee {
		needle = item.Symbol
	}
	item.Col, item.Length = highlight(lineAt(lines, item.Line), needle)
	return item, nil
}

func split(raw string) (fields, bool) {
	var parts [3]string
	rest := raw
	for i := range parts {
		j := strings.IndexAny(rest, " \t")
		if j < 0 {
			return fields{}, false
		}
		parts[i] = rest[:j]
		rest = rest[j+1:]
	}
	return fields{path: parts[0], symbol: parts[1], line: parts[2], rest: rest}, true
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func lineAt(lines []string, idx int) string {
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

// highlight returns the rune column and rune length of needle in text, or
// (0, 0) when it does not occur.
func highlight(text, needle string) (int, int) {
	if needle == "" {
		return 0, 0
	}
	i := strings.Index(text, needle)
	if i < 0 {
		return 0, 0
	}
	return utf8.RuneCountInString(text[:i]), utf8.RuneCountInString(needle)
}
