package sidxd

import (
	"encoding/json"

	"scopeidx/internal/model"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParse          = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServer         = -32000
)

type QueryParams struct {
	Kind string `json:"kind"`
	Word string `json:"word"`
}

type QueryResult struct {
	Items  []model.Item `json:"items"`
	Cached bool         `json:"cached,omitempty"`
}

type BuildResult struct {
	Report string `json:"report"`
}

type CmdLastResult struct {
	Build string `json:"build"`
	Query string `json:"query"`
}

type HistoryParams struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type WatchStatusResult struct {
	Running bool     `json:"running"`
	Dirs    []string `json:"dirs,omitempty"`
}
