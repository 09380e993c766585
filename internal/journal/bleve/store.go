// Package bleve keeps the run journal in a bbolt file and indexes run text
// with bleve for full-text search.
package bleve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	"go.etcd.io/bbolt"

	"scopeidx/internal/journal/store"
	"scopeidx/internal/model"
)

type Store struct {
	mu       sync.Mutex
	path     string
	metaPath string
	idx      bleve.Index
	meta     *bbolt.DB
}

var _ store.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("dbPath is required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	var idx bleve.Index
	if _, err := os.Stat(filepath.Join(path, "index_meta.json")); err == nil {
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, err
		}
	}

	metaPath := filepath.Join(path, "sidx-runs.db")
	meta, err := bbolt.Open(metaPath, 0o600, nil)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	s := &Store{path: path, metaPath: metaPath, idx: idx, meta: meta}
	if err := s.ensureBuckets(); err != nil {
		_ = meta.Close()
		_ = idx.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.idx != nil {
		_ = s.idx.Close()
	}
	if s.meta != nil {
		_ = s.meta.Close()
	}
	return nil
}

func (s *Store) Backend() string { return "bleve" }

func (s *Store) Append(run model.Run) error {
	if s == nil || s.meta == nil || s.idx == nil {
		return fmt.Errorf("store is not open")
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(run.Op) == "" {
		return fmt.Errorf("run op is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var seq uint64
	err := s.meta.Update(func(tx *bbolt.Tx) error {
		ids := mustBucket(tx, bucketIDs)
		if ids.Get([]byte(run.ID)) != nil {
			return fmt.Errorf("run %s already exists", run.ID)
		}
		runs := mustBucket(tx, bucketRuns)
		n, err := runs.NextSequence()
		if err != nil {
			return err
		}
		seq = n

		buf, err := encode(run)
		if err != nil {
			return err
		}
		key := seqKey(seq)
		if err := runs.Put(key, buf); err != nil {
			return err
		}
		if err := ids.Put([]byte(run.ID), key); err != nil {
			return err
		}
		return mustBucket(tx, bucketLast).Put([]byte(run.Op), key)
	})
	if err != nil {
		return err
	}

	return s.idx.Index(run.ID, map[string]any{
		"op":           run.Op,
		"kind":         run.Kind,
		"word":         run.Word,
		"dir":          run.Dir,
		"label":        run.Label,
		"command_line": run.CommandLine,
		"output":       run.Output,
		"seq":          float64(seq),
	})
}

func (s *Store) Last(op string) (model.Run, bool, error) {
	if s == nil || s.meta == nil {
		return model.Run{}, false, fmt.Errorf("store is not open")
	}
	var run model.Run
	var ok bool
	err := s.meta.View(func(tx *bbolt.Tx) error {
		key := mustBucket(tx, bucketLast).Get([]byte(strings.TrimSpace(op)))
		if key == nil {
			return nil
		}
		raw := mustBucket(tx, bucketRuns).Get(key)
		if raw == nil {
			return nil
		}
		ok = true
		return decode(raw, &run)
	})
	if err != nil || !ok {
		return model.Run{}, false, err
	}
	return run, true, nil
}

func (s *Store) List(limit int) ([]model.Run, error) {
	if s == nil || s.meta == nil {
		return nil, fmt.Errorf("store is not open")
	}
	limit = store.NormalizeLimit(limit)

	var out []model.Run
	err := s.meta.View(func(tx *bbolt.Tx) error {
		c := mustBucket(tx, bucketRuns).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var r model.Run
			if err := decode(v, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func (s *Store) Search(text string, limit int) ([]model.Run, error) {
	if s == nil || s.idx == nil {
		return nil, fmt.Errorf("store is not open")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("search text is required")
	}
	limit = store.NormalizeLimit(limit)

	q := bleve.NewDisjunctionQuery(
		matchQuery("command_line", text),
		matchQuery("output", text),
		termQuery("word", text),
	)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.SortBy([]string{"-seq"})

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]model.Run, 0, len(res.Hits))
	err = s.meta.View(func(tx *bbolt.Tx) error {
		ids := mustBucket(tx, bucketIDs)
		runs := mustBucket(tx, bucketRuns)
		for _, hit := range res.Hits {
			key := ids.Get([]byte(hit.ID))
			if key == nil {
				continue
			}
			var r model.Run
			if err := decode(runs.Get(key), &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func (s *Store) ensureBuckets() error {
	return s.meta.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketRuns, bucketIDs, bucketLast} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func buildMapping() mapping.IndexMapping {
	idxMapping := bleve.NewIndexMapping()
	idxMapping.DefaultAnalyzer = "standard"

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true
	keyword.DocValues = true

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = false
	text.Index = true

	num := bleve.NewNumericFieldMapping()
	num.Store = true
	num.Index = true
	num.DocValues = true

	doc.AddFieldMappingsAt("op", keyword)
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("word", keyword)
	doc.AddFieldMappingsAt("dir", keyword)
	doc.AddFieldMappingsAt("label", keyword)
	doc.AddFieldMappingsAt("command_line", text)
	doc.AddFieldMappingsAt("output", text)
	doc.AddFieldMappingsAt("seq", num)

	idxMapping.DefaultMapping = doc
	return idxMapping
}

func matchQuery(field string, value string) bquery.Query {
	q := bleve.NewMatchQuery(value)
	q.SetField(field)
	return q
}

func termQuery(field string, value string) bquery.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}
