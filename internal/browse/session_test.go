package browse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/storage"
	"github.com/pders01/popcorn/internal/watched"
)

func newTestSession(t *testing.T, c catalog.Catalog) (*Session, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "popcorn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewSession(c, watched.NewManager(store), config.TestConfig()), store
}

func TestSession_SelectToggleLoadsAndResetsDetail(t *testing.T) {
	fc := &fakeCatalog{}
	s, _ := newTestSession(t, fc)

	s.Drain(s.Select("tt1"))
	assert.Equal(t, "tt1", s.Selection.Active())
	assert.Equal(t, DetailLoaded, s.Detail.State().Status)

	assert.Nil(t, s.Select("tt1"))
	assert.Empty(t, s.Selection.Active())
	assert.Equal(t, DetailIdle, s.Detail.State().Status)
	assert.Equal(t, 1, fc.detailCount())
}

func TestSession_NewSearchResetsDetail(t *testing.T) {
	s, _ := newTestSession(t, &fakeCatalog{})

	s.Drain(s.Select("tt1"))
	require.Equal(t, DetailLoaded, s.Detail.State().Status)

	cmd := s.SetQuery("Inception")
	assert.Empty(t, s.Selection.Active())
	assert.Equal(t, DetailIdle, s.Detail.State().Status)
	s.Drain(cmd)
	assert.Equal(t, SearchResults, s.Search.Outcome().Status)
}

func TestSession_AddWatched(t *testing.T) {
	s, store := newTestSession(t, &fakeCatalog{})

	assert.ErrorIs(t, s.AddWatched(8), ErrNoDetail)

	s.Drain(s.Select("tt1375666"))
	assert.ErrorIs(t, s.AddWatched(0), ErrInvalidRating)
	assert.ErrorIs(t, s.AddWatched(11), ErrInvalidRating)

	require.NoError(t, s.AddWatched(9))
	assert.Empty(t, s.Selection.Active(), "adding closes the detail")
	assert.Equal(t, DetailIdle, s.Detail.State().Status)

	got, ok := s.Watched.Get("tt1375666")
	require.True(t, ok)
	assert.Equal(t, 148, got.RuntimeMinutes)
	assert.InDelta(t, 8.8, got.ExternalRating, 1e-9)
	assert.InDelta(t, 9, got.UserRating, 1e-9)

	raw, ok, err := store.Get(storage.WatchedKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"imdbID":"tt1375666"`)

	s.Drain(s.Select("tt1375666"))
	assert.ErrorIs(t, s.AddWatched(5), watched.ErrDuplicate)

	require.NoError(t, s.RemoveWatched("tt1375666"))
	assert.Zero(t, s.Watched.Len())
}

func TestSession_Shutdown(t *testing.T) {
	s, _ := newTestSession(t, &fakeCatalog{})

	cmd := s.SetQuery("Inception")
	ctx := s.Search.inflight.Context()
	s.Shutdown()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	s.Drain(cmd)
	assert.Equal(t, SearchLoading, s.Search.Outcome().Status)
}

func TestSession_EndToEndAgainstHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("s") == "Inception":
			w.Write([]byte(`{"Search":[{"Title":"Inception","Year":"2010","imdbID":"tt1375666","Type":"movie","Poster":"N/A"}],"Response":"True"}`))
		case q.Get("s") != "":
			w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
		case q.Get("i") == "tt1375666":
			w.Write([]byte(`{"Title":"Inception","Year":"2010","Runtime":"148 min","imdbRating":"8.8","imdbID":"tt1375666","Response":"True"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	cfg := config.TestConfig()
	cfg.Catalog.BaseURL = server.URL + "/"
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "popcorn.db"))
	require.NoError(t, err)
	defer store.Close()

	s := NewSession(catalog.NewClient(cfg.Catalog), watched.NewManager(store), cfg)

	s.Drain(s.SetQuery("zzzzzqqqqq"))
	assert.Equal(t, "movie not found", s.Search.Outcome().Err)

	s.Drain(s.SetQuery("Inception"))
	out := s.Search.Outcome()
	require.Equal(t, SearchResults, out.Status)
	require.Len(t, out.Items, 1)

	s.Drain(s.Select(out.Items[0].ID))
	require.Equal(t, DetailLoaded, s.Detail.State().Status)
	require.NoError(t, s.AddWatched(10))

	summary := s.Watched.Summary()
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 148, summary.AvgRuntime, 1e-9)

	s.Drain(s.Select("tt9999999"))
	assert.Equal(t, DetailFailed, s.Detail.State().Status)
	assert.Equal(t, "api error", s.Detail.State().Err)
}
