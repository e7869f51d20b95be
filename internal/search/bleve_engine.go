package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/popcorn/internal/debuglog"
	"github.com/pders01/popcorn/internal/storage"
)

// BleveEngine keeps the watched list in a bleve index. Hits are resolved
// against the latest snapshot so results always carry current ratings.
type BleveEngine struct {
	idx     bleve.Index
	entries map[string]storage.WatchedEntry
}

// NewBleveEngine opens or creates the index at indexPath and syncs it with
// entries. An empty indexPath builds an in-memory index.
func NewBleveEngine(indexPath string, entries []storage.WatchedEntry) (*BleveEngine, error) {
	var idx bleve.Index
	var err error

	if indexPath == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating in-memory index: %w", err)
		}
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("creating index directory: %w", mkErr)
		}
		idx, err = bleve.Open(indexPath)
		if err != nil {
			idx, err = bleve.New(indexPath, buildIndexMapping())
			if err != nil {
				return nil, fmt.Errorf("creating index: %w", err)
			}
		}
	}

	be := &BleveEngine{idx: idx}
	if err := be.sync(entries); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	year := bleve.NewTextFieldMapping()
	year.Analyzer = standard.Name
	year.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("year", year)

	im.DefaultMapping = dm
	return im
}

func (b *BleveEngine) OnWatchedChanged(entries []storage.WatchedEntry) {
	if err := b.sync(entries); err != nil {
		debuglog.Errorf("watched index sync failed: %v", err)
	}
}

// sync makes the index hold exactly entries.
func (b *BleveEngine) sync(entries []storage.WatchedEntry) error {
	next := make(map[string]storage.WatchedEntry, len(entries))
	for _, e := range entries {
		next[e.ID] = e
	}

	existing, err := b.indexedIDs()
	if err != nil {
		return fmt.Errorf("listing indexed entries: %w", err)
	}

	batch := b.idx.NewBatch()
	for _, id := range existing {
		if _, keep := next[id]; !keep {
			batch.Delete(id)
		}
	}
	for id, e := range next {
		if err := batch.Index(id, map[string]any{
			"title": e.Title,
			"year":  e.Year,
		}); err != nil {
			return fmt.Errorf("indexing %s: %w", id, err)
		}
	}
	if err := b.idx.Batch(batch); err != nil {
		return fmt.Errorf("writing index batch: %w", err)
	}

	b.entries = next
	return nil
}

func (b *BleveEngine) indexedIDs() ([]string, error) {
	total, err := b.DocCount()
	if err != nil || total == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), total, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = len(b.entries)
		if limit == 0 {
			return []*Result{}, nil
		}
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)

		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		if utf8.RuneCountInString(tok) >= 4 {
			qf := bleve.NewFuzzyQuery(tok)
			qf.SetField("title")
			qf.SetFuzziness(1)
			qf.SetBoost(2.0)
			qs = append(qs, qf)
		}

		qy := bleve.NewMatchQuery(tok)
		qy.SetField("year")
		qy.SetBoost(1.0)
		qs = append(qs, qy)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		entry, ok := b.entries[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{
			Entry:   entry,
			Score:   h.Score,
			Matches: []Match{{Field: "title", Text: entry.Title, Weight: h.Score}},
		})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}
