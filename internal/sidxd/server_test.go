package sidxd

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"scopeidx/internal/config"
	"scopeidx/internal/workspace"
)

// fakeTool answers builds with "built" and every query with one line for
// src.c, appending one x per invocation to $SIDX_TEST_CALLS.
const fakeTool = `#!/bin/sh
echo x >> "$SIDX_TEST_CALLS"
case "$*" in
  *-b*) echo built ;;
  *) echo 'src.c main 1 int main(void)' ;;
esac
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	ws, root := newTestWorkspace(t, fakeTool)
	s, err := NewServer(Options{Listen: "127.0.0.1:0", Workspace: ws})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, root
}

// newTestWorkspace opens a workspace rooted at a temp dir holding src.c,
// with script installed as the indexer.
func newTestWorkspace(t *testing.T, script string) (*workspace.Workspace, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	root := t.TempDir()
	bin := t.TempDir()
	t.Setenv("SIDX_TEST_CALLS", filepath.Join(bin, "calls.log"))
	tool := filepath.Join(bin, "fakescope")
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "src.c"), []byte("int main(void)\n"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	cfg := config.Default()
	cfg.Executable = tool
	cfg.Journal = "none"
	cfg.WatchDebounce = 50 * time.Millisecond
	cfg.Resolve(root)

	ws, err := workspace.Open(cfg, nil)
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws, root
}

func TestNewServer_RequiresWorkspace(t *testing.T) {
	if _, err := NewServer(Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestServerPingAndVersion(t *testing.T) {
	s, _ := newTestServer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run() }()

	addr := waitAddr(t, s, time.Second)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	if err := enc.Encode(Request{JSONRPC: "2.0", Method: "ping", ID: json.RawMessage("1")}); err != nil {
		t.Fatalf("encode ping: %v", err)
	}
	var pingResp Response
	if err := dec.Decode(&pingResp); err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if string(pingResp.ID) != "1" || pingResp.Error != nil || pingResp.Result != "pong" {
		t.Fatalf("ping resp=%+v", pingResp)
	}

	if err := enc.Encode(Request{JSONRPC: "2.0", Method: "version", ID: json.RawMessage("2")}); err != nil {
		t.Fatalf("encode version: %v", err)
	}
	var versionResp Response
	if err := dec.Decode(&versionResp); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v, ok := versionResp.Result.(string); !ok || v == "" {
		t.Fatalf("version result=%v", versionResp.Result)
	}

	_ = s.Close()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not stop within 1s after Close")
	}
}

func TestServer_ProtocolErrors(t *testing.T) {
	s, _ := newTestServer(t)
	go func() { _ = s.Run() }()
	addr := waitAddr(t, s, time.Second)
	t.Cleanup(func() { _ = s.Close() })

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	dec := json.NewDecoder(conn)

	send := func(raw string) Response {
		t.Helper()
		if _, err := conn.Write([]byte(raw + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	cases := []struct {
		raw  string
		code int
	}{
		{`{not json`, codeParse},
		{`{"jsonrpc":"1.0","id":1,"method":"ping"}`, codeInvalidRequest},
		{`{"jsonrpc":"2.0","id":2,"method":"nope"}`, codeMethodNotFound},
		{`{"jsonrpc":"2.0","id":3,"method":"query","params":"bad"}`, codeInvalidParams},
		{`{"jsonrpc":"2.0","id":4,"method":"query","params":{"kind":"bogus","word":"x"}}`, codeInvalidParams},
		{`{"jsonrpc":"2.0","id":5,"method":"query","params":{"kind":"symbol","word":"  "}}`, codeServer},
	}
	for _, tc := range cases {
		resp := send(tc.raw)
		if resp.Error == nil || resp.Error.Code != tc.code {
			t.Fatalf("%s: resp=%+v, want code %d", tc.raw, resp, tc.code)
		}
	}

	// A notification gets no reply; the next request's reply comes first.
	if _, err := conn.Write([]byte(`{"jsonrpc":"2.0","method":"ping"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp := send(`{"jsonrpc":"2.0","id":9,"method":"ping"}`)
	if string(resp.ID) != "9" || resp.Result != "pong" {
		t.Fatalf("resp=%+v", resp)
	}
}

func waitAddr(t *testing.T, s *Server, timeout time.Duration) string {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if addr := s.Addr(); addr != "" {
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not start listening in time")
	return ""
}
