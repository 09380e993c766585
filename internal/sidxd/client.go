package sidxd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"scopeidx/internal/model"
)

type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message) }

// Client is safe for concurrent use; calls are serialized on one connection.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	nextID int64
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

func (c *Client) call(method string, params any, out any) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("client is nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := Request{JSONRPC: "2.0", Method: method, ID: json.RawMessage(fmt.Sprintf("%d", c.nextID))}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		req.Params = b
	}

	if err := WriteOneLine(c.w, req); err != nil {
		return err
	}
	if err := c.w.Flush(); err != nil {
		return err
	}

	line, err := ReadOneLine(c.r)
	if err != nil {
		return err
	}
	var resp rawResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

func (c *Client) Ping() error {
	var out string
	if err := c.call("ping", nil, &out); err != nil {
		return err
	}
	if out != "pong" {
		return fmt.Errorf("unexpected ping result: %q", out)
	}
	return nil
}

func (c *Client) Version() (string, error) {
	var out string
	if err := c.call("version", nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) Build() (string, error) {
	var out BuildResult
	if err := c.call("build", nil, &out); err != nil {
		return "", err
	}
	return out.Report, nil
}

func (c *Client) Query(kind model.QueryKind, word string) ([]model.Item, error) {
	var out QueryResult
	if err := c.call("query", QueryParams{Kind: string(kind), Word: word}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CmdLast() (CmdLastResult, error) {
	var out CmdLastResult
	err := c.call("cmd.last", nil, &out)
	return out, err
}

func (c *Client) History(p HistoryParams) ([]model.Run, error) {
	var out []model.Run
	if err := c.call("history", p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WatchStart() (WatchStatusResult, error) {
	var out WatchStatusResult
	err := c.call("watch.start", nil, &out)
	return out, err
}

func (c *Client) WatchStop() (WatchStatusResult, error) {
	var out WatchStatusResult
	err := c.call("watch.stop", nil, &out)
	return out, err
}

func (c *Client) WatchStatus() (WatchStatusResult, error) {
	var out WatchStatusResult
	err := c.call("watch.status", nil, &out)
	return out, err
}
