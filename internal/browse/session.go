package browse

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/storage"
	"github.com/pders01/popcorn/internal/watched"
)

var (
	ErrNoDetail      = errors.New("no movie details loaded")
	ErrInvalidRating = errors.New("rating out of range")
)

// Session wires the search, selection, detail and watched components into
// the flow the UI drives.
type Session struct {
	Search    *SearchController
	Detail    *DetailFetcher
	Selection *Selection
	Watched   *watched.Manager

	maxRating int
}

func NewSession(c catalog.Catalog, wm *watched.Manager, cfg *config.Config) *Session {
	sel := NewSelection()
	s := &Session{
		Search:    NewSearchController(c, cfg.Catalog, sel),
		Detail:    NewDetailFetcher(c),
		Selection: sel,
		Watched:   wm,
		maxRating: cfg.UI.MaxRating,
	}
	if s.maxRating <= 0 {
		s.maxRating = 10
	}

	sel.OnChange(func(active string) {
		if active == "" {
			s.Detail.Reset()
		}
	})
	return s
}

func (s *Session) MaxRating() int {
	return s.maxRating
}

func (s *Session) SetQuery(text string) tea.Cmd {
	return s.Search.SetQuery(text)
}

// Select toggles id and returns the detail load when it opened.
func (s *Session) Select(id string) tea.Cmd {
	s.Selection.Select(id)
	if active := s.Selection.Active(); active != "" {
		return s.Detail.Load(active)
	}
	return nil
}

func (s *Session) Close() {
	s.Selection.Close()
}

func (s *Session) Update(msg tea.Msg) (tea.Cmd, bool) {
	if cmd, ok := s.Search.Update(msg); ok {
		return cmd, true
	}
	return s.Detail.Update(msg)
}

// AddWatched records the open movie with rating and closes it.
func (s *Session) AddWatched(rating float64) error {
	st := s.Detail.State()
	if st.Status != DetailLoaded || st.Record == nil {
		return ErrNoDetail
	}
	if rating < 1 || rating > float64(s.maxRating) {
		return fmt.Errorf("%w: %g not in 1..%d", ErrInvalidRating, rating, s.maxRating)
	}

	rec := st.Record
	err := s.Watched.Add(storage.WatchedEntry{
		ID:             rec.ID,
		Title:          rec.Title,
		Year:           rec.Year,
		PosterURL:      rec.PosterURL,
		ExternalRating: rec.ExternalRating,
		RuntimeMinutes: rec.RuntimeMinutes,
		UserRating:     rating,
	})
	if err != nil {
		return err
	}
	s.Selection.Close()
	return nil
}

func (s *Session) RemoveWatched(id string) error {
	return s.Watched.Remove(id)
}

// Shutdown cancels every request still in flight.
func (s *Session) Shutdown() {
	s.Search.Cancel()
	s.Detail.Reset()
}

// Drain runs cmd and every command it leads to on the calling goroutine,
// feeding each message back through Update, until nothing is left. It
// blocks for debounce ticks and network calls.
func (s *Session) Drain(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				s.Drain(c)
			}
			return
		}
		next, handled := s.Update(msg)
		if !handled {
			return
		}
		cmd = next
	}
}
