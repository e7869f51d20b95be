package browse

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/debuglog"
)

type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchLoading
	SearchResults
	SearchEmpty
	SearchFailed
)

func (s SearchStatus) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchLoading:
		return "loading"
	case SearchResults:
		return "results"
	case SearchEmpty:
		return "empty"
	case SearchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchOutcome is what observers of the search controller see. Err is
// only set when Status is SearchFailed.
type SearchOutcome struct {
	Status SearchStatus
	Query  string
	Items  []catalog.SearchResultItem
	Err    string
}

// SearchController turns query edits into debounced, cancellable catalog
// searches. It must only be driven from one goroutine (the UI loop); the
// commands it returns do the network work and report back through Update.
type SearchController struct {
	catalog   catalog.Catalog
	selection *Selection
	parent    context.Context

	minLen   int
	debounce time.Duration

	query     string
	seq       uint64
	inflight  *Handle
	outcome   SearchOutcome
	listeners []func(SearchOutcome)
}

// NewSearchController builds a controller. selection may be nil; when set
// it is closed whenever the result list is about to change.
func NewSearchController(c catalog.Catalog, cfg config.CatalogConfig, selection *Selection) *SearchController {
	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = 3
	}
	return &SearchController{
		catalog:   c,
		selection: selection,
		parent:    context.Background(),
		minLen:    minLen,
		debounce:  cfg.Debounce,
	}
}

// OnResult registers fn to receive every outcome transition.
func (s *SearchController) OnResult(fn func(SearchOutcome)) {
	s.listeners = append(s.listeners, fn)
}

func (s *SearchController) Outcome() SearchOutcome {
	return s.outcome
}

func (s *SearchController) Query() string {
	return s.query
}

func (s *SearchController) Loading() bool {
	return s.outcome.Status == SearchLoading
}

// SetQuery records a new query. Short queries clear the results at once
// without touching the network. Longer ones emit Loading and return the
// command that will run the search once the debounce delay passes.
func (s *SearchController) SetQuery(text string) tea.Cmd {
	q := strings.TrimSpace(text)
	if q == s.query {
		return nil
	}
	s.query = q
	s.seq++
	s.cancelInflight()

	if utf8.RuneCountInString(q) < s.minLen {
		s.emit(SearchOutcome{Status: SearchResults, Query: q})
		return nil
	}

	if s.selection != nil {
		s.selection.Close()
	}
	s.emit(SearchOutcome{Status: SearchLoading, Query: q})

	seq := s.seq
	if s.debounce <= 0 {
		return s.fetch(seq, q)
	}
	return tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return searchFireMsg{seq: seq}
	})
}

// Update consumes the controller's own messages. handled is false for
// anything else.
func (s *SearchController) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case searchFireMsg:
		if msg.seq != s.seq {
			debuglog.Debugf("search: dropping stale debounce tick %d (current %d)", msg.seq, s.seq)
			return nil, true
		}
		return s.fetch(msg.seq, s.query), true

	case searchResultMsg:
		msg.handle.Cancel()
		if msg.seq != s.seq || isCancelled(msg.err) {
			debuglog.WithFields(map[string]interface{}{
				"request": msg.handle.Short(),
				"query":   msg.query,
			}).Debugf("search: dropping superseded response")
			return nil, true
		}
		s.inflight = nil
		s.apply(msg)
		return nil, true
	}
	return nil, false
}

func (s *SearchController) apply(msg searchResultMsg) {
	log := debuglog.WithFields(map[string]interface{}{
		"request": msg.handle.Short(),
		"query":   msg.query,
	})

	switch {
	case msg.err != nil:
		reason := failureReason(msg.err)
		log.Warnf("search failed: %v", msg.err)
		s.emit(SearchOutcome{Status: SearchFailed, Query: msg.query, Err: reason})
	case len(msg.items) == 0:
		log.Debugf("search returned no items")
		s.emit(SearchOutcome{Status: SearchEmpty, Query: msg.query})
	default:
		log.Debugf("search returned %d items", len(msg.items))
		if s.selection != nil {
			s.selection.Close()
		}
		s.emit(SearchOutcome{Status: SearchResults, Query: msg.query, Items: msg.items})
	}
}

func (s *SearchController) fetch(seq uint64, q string) tea.Cmd {
	h := newHandle(s.parent)
	s.inflight = h
	debuglog.WithFields(map[string]interface{}{
		"request": h.Short(),
		"query":   q,
	}).Debugf("search: starting request")

	c := s.catalog
	return func() tea.Msg {
		items, err := c.Search(h.Context(), q)
		return searchResultMsg{seq: seq, handle: h, query: q, items: items, err: err}
	}
}

// Cancel aborts the in-flight request and invalidates any pending tick
// without changing the visible outcome.
func (s *SearchController) Cancel() {
	s.seq++
	s.cancelInflight()
}

func (s *SearchController) cancelInflight() {
	if s.inflight != nil {
		debuglog.Debugf("search: cancelling request %s", s.inflight.Short())
		s.inflight.Cancel()
		s.inflight = nil
	}
}

func (s *SearchController) emit(o SearchOutcome) {
	s.outcome = o
	for _, fn := range s.listeners {
		fn(o)
	}
}
