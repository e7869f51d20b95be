package catalog

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedClient memoizes detail records for a while. Searches always go to
// the network.
type CachedClient struct {
	Catalog
	details *gocache.Cache
}

// NewCachedClient wraps next. A ttl of zero or less disables caching and
// returns next unchanged.
func NewCachedClient(next Catalog, ttl time.Duration) Catalog {
	if ttl <= 0 {
		return next
	}
	return &CachedClient{
		Catalog: next,
		details: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedClient) Detail(ctx context.Context, id string) (*DetailRecord, error) {
	if v, ok := c.details.Get(id); ok {
		rec := *v.(*DetailRecord)
		return &rec, nil
	}
	rec, err := c.Catalog.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *rec
	c.details.SetDefault(id, &stored)
	return rec, nil
}

// Flush drops every cached record.
func (c *CachedClient) Flush() {
	c.details.Flush()
}
