package model

// Item is one structured query result.
type Item struct {
	Path        string `json:"path"`
	Symbol      string `json:"symbol"`
	Line        int    `json:"line"`
	Col         int    `json:"col"`
	Length      int    `json:"length"`
	Description string `json:"description"`
	Label       string `json:"label"`
}

// HighlightEnd is the exclusive end column of the highlight range.
func (i Item) HighlightEnd() int {
	return i.Col + i.Length
}

// Run is one journaled build or query invocation against a single directory.
type Run struct {
	ID          string `json:"id"`
	Op          string `json:"op"`
	Dir         string `json:"dir"`
	Label       string `json:"label,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Word        string `json:"word,omitempty"`
	CommandLine string `json:"command_line"`
	OK          bool   `json:"ok"`
	Output      string `json:"output,omitempty"`
	Items       int    `json:"items"`
	StartedAt   int64  `json:"started_at"`
	DurationMS  int64  `json:"duration_ms"`
}

const (
	OpBuild = "build"
	OpQuery = "query"
)
