package search

import "github.com/pders01/popcorn/internal/storage"

// Searcher filters the watched list by free text.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// UpdateListener engines are told about every committed watched list.
type UpdateListener interface {
	OnWatchedChanged(entries []storage.WatchedEntry)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one watched entry matching a query.
type Result struct {
	Entry   storage.WatchedEntry
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title" or "year"
	Text   string
	Weight float64
}

// MinQueryLength is the shortest query that produces results.
const MinQueryLength = 2
