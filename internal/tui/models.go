package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/search"
	"github.com/pders01/popcorn/internal/storage"
)

type View int

const (
	ViewSearch View = iota
	ViewDetail
	ViewWatched
	ViewFilter
	ViewDeleteConfirm
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewWatched:
		return "watched"
	case ViewFilter:
		return "filter"
	case ViewDeleteConfirm:
		return "delete"
	default:
		return "unknown"
	}
}

type resultItem struct {
	item    catalog.SearchResultItem
	watched bool
}

func (i resultItem) Title() string {
	if i.watched {
		return WatchedItemStyle.Render("✓ " + i.item.Title)
	}
	return i.item.Title
}

func (i resultItem) Description() string {
	parts := []string{}
	if i.item.Year != "" {
		parts = append(parts, i.item.Year)
	}
	if i.item.MediaType != "" {
		parts = append(parts, i.item.MediaType)
	}
	parts = append(parts, i.item.ID)
	return lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Join(parts, " • "))
}

func (i resultItem) FilterValue() string { return i.item.Title }

type watchedItem struct {
	entry storage.WatchedEntry
}

func (i watchedItem) Title() string {
	title := i.entry.Title
	if i.entry.Year != "" {
		title = fmt.Sprintf("%s (%s)", title, i.entry.Year)
	}
	return title
}

func (i watchedItem) Description() string {
	desc := fmt.Sprintf("rated %g • IMDb %.1f", i.entry.UserRating, i.entry.ExternalRating)
	if i.entry.RuntimeMinutes > 0 {
		desc += fmt.Sprintf(" • %d min", i.entry.RuntimeMinutes)
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
}

func (i watchedItem) FilterValue() string { return i.entry.Title + " " + i.entry.Year }

// filterItem is a watched entry found through the search index.
type filterItem struct {
	result *search.Result
}

func (i filterItem) Title() string {
	return watchedItem{entry: i.result.Entry}.Title()
}

func (i filterItem) Description() string {
	fields := make([]string, 0, len(i.result.Matches))
	for _, m := range i.result.Matches {
		fields = append(fields, m.Field)
	}
	desc := fmt.Sprintf("rated %g", i.result.Entry.UserRating)
	if len(fields) > 0 {
		desc += " • matched " + strings.Join(fields, ", ")
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
}

func (i filterItem) FilterValue() string { return i.result.Entry.Title }

type detailRenderedMsg struct {
	id      string
	content string
}

type openedMsg struct {
	what string
}

type errorMsg struct {
	err error
}
