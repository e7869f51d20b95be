package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/debuglog"
)

var (
	// ErrTransport covers non-2xx responses, network failures and
	// undecodable bodies.
	ErrTransport = errors.New("api error")
	// ErrNotFound is returned when the catalog reports no match.
	ErrNotFound = errors.New("movie not found")
)

// Catalog is the read side of the remote movie service.
type Catalog interface {
	Search(ctx context.Context, query string) ([]SearchResultItem, error)
	Detail(ctx context.Context, id string) (*DetailRecord, error)
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewClient builds a client for the configured endpoint. The base URL and
// key come from cfg only.
func NewClient(cfg config.CatalogConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.HTTPTimeout})
}

func NewClientWithHTTP(cfg config.CatalogConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		client:    hc,
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]SearchResultItem, error) {
	resp, err := c.get(ctx, url.Values{"s": {query}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseSearch(resp.Body)
}

func (c *Client) Detail(ctx context.Context, id string) (*DetailRecord, error) {
	resp, err := c.get(ctx, url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseDetail(resp.Body, id)
}

func (c *Client) get(ctx context.Context, params url.Values) (*http.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", ErrTransport, err)
	}
	q := u.Query()
	q.Set("apikey", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrTransport, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// A cancelled request is reported as such so callers can stay silent.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		debuglog.Warnf("catalog request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		debuglog.Warnf("catalog returned HTTP %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}
	return resp, nil
}
