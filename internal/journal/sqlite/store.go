package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"scopeidx/internal/journal/store"
	"scopeidx/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	op           TEXT NOT NULL,
	dir          TEXT NOT NULL DEFAULT '',
	label        TEXT NOT NULL DEFAULT '',
	kind         TEXT NOT NULL DEFAULT '',
	word         TEXT NOT NULL DEFAULT '',
	command_line TEXT NOT NULL DEFAULT '',
	ok           INTEGER NOT NULL DEFAULT 0,
	output       TEXT NOT NULL DEFAULT '',
	items        INTEGER NOT NULL DEFAULT 0,
	started_at   INTEGER NOT NULL DEFAULT 0,
	duration_ms  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_op_seq ON runs(op, seq);
`

const runColumns = `id, op, dir, label, kind, word, command_line, ok, output, items, started_at, duration_ms`

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("dbPath is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the daemon appends from several goroutines.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

func (s *Store) init() error {
	for _, stmt := range pragmas {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(schemaSQL)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Backend() string { return "sqlite" }

func (s *Store) Append(run model.Run) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not open")
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(run.Op) == "" {
		return fmt.Errorf("run op is required")
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Op,
		run.Dir,
		run.Label,
		run.Kind,
		run.Word,
		run.CommandLine,
		boolToInt(run.OK),
		run.Output,
		run.Items,
		run.StartedAt,
		run.DurationMS,
	)
	return err
}

func (s *Store) Last(op string) (model.Run, bool, error) {
	if s == nil || s.db == nil {
		return model.Run{}, false, fmt.Errorf("store is not open")
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE op = ? ORDER BY seq DESC LIMIT 1`,
		strings.TrimSpace(op),
	)
	if err != nil {
		return model.Run{}, false, err
	}
	runs, err := scanRuns(rows)
	if err != nil || len(runs) == 0 {
		return model.Run{}, false, err
	}
	return runs[0], true, nil
}

func (s *Store) List(limit int) ([]model.Run, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not open")
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT ?`,
		store.NormalizeLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func (s *Store) Search(text string, limit int) ([]model.Run, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not open")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("search text is required")
	}

	like := "%" + escapeLike(text) + "%"
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs
		 WHERE command_line LIKE ? ESCAPE '\'
		    OR output LIKE ? ESCAPE '\'
		    OR word LIKE ? ESCAPE '\'
		 ORDER BY seq DESC LIMIT ?`,
		like, like, like,
		store.NormalizeLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func (s *Store) Count() (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store is not open")
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM runs`).Scan(&n)
	return n, err
}

func scanRuns(rows *sql.Rows) ([]model.Run, error) {
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var r model.Run
		var ok int
		if err := rows.Scan(
			&r.ID,
			&r.Op,
			&r.Dir,
			&r.Label,
			&r.Kind,
			&r.Word,
			&r.CommandLine,
			&ok,
			&r.Output,
			&r.Items,
			&r.StartedAt,
			&r.DurationMS,
		); err != nil {
			return nil, err
		}
		r.OK = ok != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
