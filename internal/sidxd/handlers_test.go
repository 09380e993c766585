package sidxd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scopeidx/internal/model"
)

// generationTool reports the generation stored in $SIDX_TEST_STATE as the
// symbol of its single query result. Builds bump it to "new". Queries read
// the state before sleeping, so a slow query returns what it saw at start.
const generationTool = `#!/bin/sh
state="$SIDX_TEST_STATE"
case "$*" in
  *-b*) echo new > "$state"; echo built ;;
  *)
    v=$(cat "$state")
    touch "$state.started"
    sleep 0.3
    echo "src.c $v 1 int main(void)"
    ;;
esac
`

// wordTool echoes its last argument into the result description.
const wordTool = `#!/bin/sh
for a; do w=$a; done
echo "src.c main 1 [$w]"
`

func TestHandlers_QueryOverlappingBuildIsNotCached(t *testing.T) {
	ws, _ := newTestWorkspace(t, generationTool)
	state := filepath.Join(t.TempDir(), "state")
	t.Setenv("SIDX_TEST_STATE", state)
	if err := os.WriteFile(state, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	h := NewHandlers(ws)
	params := QueryParams{Kind: string(model.KindDefinition), Word: "main"}

	type result struct {
		res QueryResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := h.Query(context.Background(), params)
		done <- result{res, err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(state + ".started"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("query did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := h.Build(context.Background()).Report; got != "built" {
		t.Fatalf("build report=%q", got)
	}

	var slow result
	select {
	case slow = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("query did not finish")
	}
	if slow.err != nil || len(slow.res.Items) != 1 || slow.res.Items[0].Symbol != "old" {
		t.Fatalf("overlapping query=%+v err=%v", slow.res, slow.err)
	}

	fresh, err := h.Query(context.Background(), params)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if fresh.Cached || len(fresh.Items) != 1 || fresh.Items[0].Symbol != "new" {
		t.Fatalf("expected fresh post-build result, got %+v", fresh)
	}

	again, err := h.Query(context.Background(), params)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !again.Cached || again.Items[0].Symbol != "new" {
		t.Fatalf("expected cached post-build result, got %+v", again)
	}
}

func TestHandlers_QueryKeepsWordWhitespace(t *testing.T) {
	ws, _ := newTestWorkspace(t, wordTool)
	h := NewHandlers(ws)

	res, err := h.Query(context.Background(), QueryParams{Kind: string(model.KindText), Word: " main "})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Description != "[ main ]" {
		t.Fatalf("word was altered: %+v", res.Items)
	}

	if _, err := h.Query(context.Background(), QueryParams{Kind: string(model.KindText), Word: "  "}); err == nil {
		t.Fatal("expected blank word to be rejected")
	}
}
