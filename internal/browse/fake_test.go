package browse

import (
	"context"
	"sync"

	"github.com/pders01/popcorn/internal/catalog"
)

// fakeCatalog records calls and answers through the configured funcs.
type fakeCatalog struct {
	mu       sync.Mutex
	searches []string
	details  []string

	search func(ctx context.Context, q string) ([]catalog.SearchResultItem, error)
	detail func(ctx context.Context, id string) (*catalog.DetailRecord, error)
}

func (f *fakeCatalog) Search(ctx context.Context, q string) ([]catalog.SearchResultItem, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	if f.search == nil {
		return []catalog.SearchResultItem{{ID: "tt0000001", Title: q}}, nil
	}
	return f.search(ctx, q)
}

func (f *fakeCatalog) Detail(ctx context.Context, id string) (*catalog.DetailRecord, error) {
	f.mu.Lock()
	f.details = append(f.details, id)
	f.mu.Unlock()
	if f.detail == nil {
		return &catalog.DetailRecord{
			ID:             id,
			Title:          "Title " + id,
			Year:           "2010",
			Runtime:        "148 min",
			RuntimeMinutes: 148,
			ExternalRating: 8.8,
		}, nil
	}
	return f.detail(ctx, id)
}

func (f *fakeCatalog) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeCatalog) detailCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.details)
}
