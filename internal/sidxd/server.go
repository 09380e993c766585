// Package sidxd serves a workspace over JSON-RPC 2.0, one JSON object per
// line, on a TCP listener.
package sidxd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"scopeidx/internal/logsink"
	"scopeidx/internal/model"
	"scopeidx/internal/version"
	"scopeidx/internal/workspace"
)

const DefaultListen = "127.0.0.1:7447"

type Options struct {
	Listen    string
	Workspace *workspace.Workspace
	Logger    logsink.Logger
}

type Server struct {
	opts Options
	h    *Handlers
	log  logsink.Logger

	mu        sync.Mutex
	listener  net.Listener
	closeOnce sync.Once
	closed    chan struct{}
}

func NewServer(opts Options) (*Server, error) {
	if opts.Workspace == nil {
		return nil, fmt.Errorf("workspace is required")
	}
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	log := opts.Logger
	if log == nil {
		log = logsink.Discard()
	}
	return &Server{
		opts:   opts,
		h:      NewHandlers(opts.Workspace),
		log:    log,
		closed: make(chan struct{}),
	}, nil
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run accepts connections until Close is called.
func (s *Server) Run() error {
	if s == nil {
		return fmt.Errorf("server is nil")
	}

	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.log.Info("listening on", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	if s == nil {
		return nil
	}

	s.closeOnce.Do(func() {
		close(s.closed)
		s.h.Close()
	})

	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	defer func() { _ = w.Flush() }()

	for {
		line, err := ReadOneLine(r)
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = WriteOneLine(w, Response{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &ErrorObject{Code: codeParse, Message: "parse error"},
			})
			_ = w.Flush()
			continue
		}

		if len(req.ID) == 0 {
			// Notification: no response.
			_ = s.dispatch(req)
			continue
		}

		_ = WriteOneLine(w, s.dispatch(req))
		_ = w.Flush()
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		resp.Error = &ErrorObject{Code: codeInvalidRequest, Message: "invalid jsonrpc version"}
		return resp
	}

	ctx := context.Background()
	var result any
	var err error

	switch req.Method {
	case "ping":
		result = "pong"
	case "version":
		result = version.String()
	case "build":
		result = s.h.Build(ctx)
	case "query":
		var p QueryParams
		if e := decodeParams(req, &p); e != nil {
			resp.Error = e
			return resp
		}
		if _, kerr := model.ParseQueryKind(p.Kind); kerr != nil {
			resp.Error = &ErrorObject{Code: codeInvalidParams, Message: kerr.Error()}
			return resp
		}
		result, err = s.h.Query(ctx, p)
	case "cmd.last":
		result = s.h.CmdLast()
	case "history":
		var p HistoryParams
		if e := decodeParams(req, &p); e != nil {
			resp.Error = e
			return resp
		}
		result, err = s.h.History(p)
	case "watch.start":
		result, err = s.h.WatchStart()
	case "watch.stop":
		result = s.h.WatchStop()
	case "watch.status":
		result = s.h.WatchStatus()
	default:
		resp.Error = &ErrorObject{Code: codeMethodNotFound, Message: "method not found"}
		return resp
	}

	if err != nil {
		s.log.Err(req.Method+":", err.Error())
		resp.Error = &ErrorObject{Code: codeServer, Message: err.Error()}
		return resp
	}
	resp.Result = result
	return resp
}

func decodeParams(req Request, out any) *ErrorObject {
	if len(req.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params, out); err != nil {
		return &ErrorObject{Code: codeInvalidParams, Message: "invalid params"}
	}
	return nil
}

// WatchStart starts the workspace watcher, as the watch.start method does.
func (s *Server) WatchStart() (WatchStatusResult, error) {
	return s.h.WatchStart()
}
