package sidxcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"scopeidx/internal/model"
)

func RenderJSONL(items []model.Item) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, item := range items {
		_ = enc.Encode(item)
	}
	return b.String()
}

// RenderDefault prints "label: path:line: symbol description" with a
// 1-based line number.
func RenderDefault(items []model.Item) string {
	var b strings.Builder
	for _, item := range items {
		_, _ = fmt.Fprintf(&b, "%s: %s:%d: %s %s\n", item.Label, item.Path, item.Line+1, item.Symbol, item.Description)
	}
	return b.String()
}

// RenderVim prints quickfix lines with 1-based line and column.
func RenderVim(items []model.Item) string {
	var b strings.Builder
	for _, item := range items {
		_, _ = fmt.Fprintf(&b, "%s:%d:%d: %s\n", item.Path, item.Line+1, item.Col+1, item.Description)
	}
	return b.String()
}

func RenderRuns(runs []model.Run) string {
	var b strings.Builder
	for _, r := range runs {
		status := "ok"
		if !r.OK {
			status = "FAIL"
		}
		when := time.UnixMilli(r.StartedAt).Format("2006-01-02 15:04:05")
		_, _ = fmt.Fprintf(&b, "%s %-5s %-4s %6dms %s  (%s)\n", when, r.Op, status, r.DurationMS, r.CommandLine, r.Dir)
		if !r.OK && r.Output != "" {
			_, _ = fmt.Fprintf(&b, "    %s\n", firstLine(r.Output))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func writeJSONLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
