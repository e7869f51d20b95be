package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/popcorn/internal/config"
)

const inceptionSearch = `{"Search":[
{"Title":"Inception","Year":"2010","imdbID":"tt1375666","Type":"movie","Poster":"https://img/1.jpg"},
{"Title":"Inception: The Cobol Job","Year":"2010","imdbID":"tt5295894","Type":"movie","Poster":"N/A"}
],"totalResults":"2","Response":"True"}`

const inceptionDetail = `{"Title":"Inception","Year":"2010","Released":"16 Jul 2010",
"Runtime":"148 min","Genre":"Action, Adventure, Sci-Fi","Director":"Christopher Nolan",
"Actors":"Leonardo DiCaprio, Joseph Gordon-Levitt","Plot":"A thief who steals corporate secrets.",
"Poster":"https://img/1.jpg","imdbRating":"8.8","imdbID":"tt1375666","Response":"True"}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig().Catalog
	cfg.BaseURL = server.URL + "/"
	return NewClient(cfg)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Inception", r.URL.Query().Get("s"))
		assert.Equal(t, "popcorn-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(inceptionSearch))
	})

	items, err := client.Search(context.Background(), "Inception")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, SearchResultItem{
		ID:        "tt1375666",
		Title:     "Inception",
		MediaType: "movie",
		Year:      "2010",
		PosterURL: "https://img/1.jpg",
	}, items[0])
	assert.Empty(t, items[1].PosterURL, "N/A poster should be cleared")
}

func TestClient_SearchClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{}`, ErrTransport},
		{"unauthorized", http.StatusUnauthorized, `{"Response":"False","Error":"Invalid API key!"}`, ErrTransport},
		{"not found", http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`, ErrNotFound},
		{"garbage body", http.StatusOK, `<html>`, ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Search(context.Background(), "zzzzzqqqqq")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestClient_SearchEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Search":[],"Response":"True"}`))
	})

	items, err := client.Search(context.Background(), "Inception")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	cfg := config.TestConfig().Catalog
	cfg.BaseURL = server.URL + "/"
	server.Close()

	_, err := NewClient(cfg).Search(context.Background(), "Inception")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_CancelledRequest(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Search(ctx, "Inception")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestClient_Detail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt1375666", r.URL.Query().Get("i"))
		w.Write([]byte(inceptionDetail))
	})

	rec, err := client.Detail(context.Background(), "tt1375666")
	require.NoError(t, err)

	assert.Equal(t, "tt1375666", rec.ID)
	assert.Equal(t, "Inception", rec.Title)
	assert.Equal(t, "148 min", rec.Runtime)
	assert.Equal(t, 148, rec.RuntimeMinutes)
	assert.InDelta(t, 8.8, rec.ExternalRating, 1e-9)
	assert.Equal(t, "Action, Adventure, Sci-Fi", rec.Genre)
	assert.Equal(t, "Christopher Nolan", rec.Director)
	assert.Equal(t, "https://www.imdb.com/title/tt1375666/", rec.IMDbURL())
}

func TestClient_DetailNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	_, err := client.Detail(context.Background(), "tt0000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedClient_Detail(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(inceptionDetail))
	})

	cached := NewCachedClient(client, time.Minute)

	first, err := cached.Detail(context.Background(), "tt1375666")
	require.NoError(t, err)
	first.Title = "mutated"

	second, err := cached.Detail(context.Background(), "tt1375666")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, "Inception", second.Title, "callers must not share cached records")
}

func TestCachedClient_DoesNotCacheErrors(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	cached := NewCachedClient(client, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := cached.Detail(context.Background(), "tt1375666")
		assert.ErrorIs(t, err, ErrTransport)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestNewCachedClient_ZeroTTL(t *testing.T) {
	client := NewClient(config.TestConfig().Catalog)
	assert.Same(t, client, NewCachedClient(client, 0))
}
