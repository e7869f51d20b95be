package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/popcorn/internal/watched"
)

// Canonical short status messages used across the app.
const (
	MsgSearching     = "Searching…"
	MsgLoadingDetail = "Loading movie…"
	MsgNoResults     = "No results"
	MsgTypeMore      = "Keep typing to search"
	MsgPickRating    = "Press 1-9 (0 for 10) to rate"
	MsgRemoved       = "Removed from watched"
	MsgNothingToOpen = "Nothing to open"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgIndexed(n int) string {
	if n == 1 {
		return "Index: 1 movie"
	}
	return fmt.Sprintf("Index: %d movies", n)
}

func MsgAddedWatched(title string, rating int) string {
	return fmt.Sprintf("Added '%s' rated %d", strings.TrimSpace(title), rating)
}

func MsgRemovedWatched(title string) string {
	if title == "" {
		return MsgRemoved
	}
	return fmt.Sprintf("Removed '%s' from watched", strings.TrimSpace(title))
}

func MsgYouRated(rating float64) string {
	return fmt.Sprintf("You rated this movie %g", rating)
}

// MsgSummary renders the watched-list aggregates on one line.
func MsgSummary(s watched.Summary) string {
	if s.Count == 0 {
		return "Nothing watched yet"
	}
	base := "1 movie"
	if s.Count != 1 {
		base = fmt.Sprintf("%d movies", s.Count)
	}
	return fmt.Sprintf("%s • avg IMDb %.1f • avg rating %.1f • avg runtime %.0f min",
		base, s.AvgExternalRating, s.AvgUserRating, s.AvgRuntime)
}
