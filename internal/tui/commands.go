package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/popcorn/internal/catalog"
)

func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// DetailMarkdown lays out a detail record for glamour.
func DetailMarkdown(rec *catalog.DetailRecord) string {
	var b strings.Builder

	title := rec.Title
	if rec.Year != "" {
		title = fmt.Sprintf("%s (%s)", title, rec.Year)
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", title))

	var facts []string
	if rec.ExternalRating > 0 {
		facts = append(facts, fmt.Sprintf("**IMDb** %.1f/10", rec.ExternalRating))
	}
	if rec.Runtime != "" {
		facts = append(facts, fmt.Sprintf("**Runtime** %s", rec.Runtime))
	}
	if rec.Released != "" {
		facts = append(facts, fmt.Sprintf("**Released** %s", rec.Released))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, " · "))
		b.WriteString("\n\n")
	}

	for _, row := range []struct{ label, value string }{
		{"Genre", rec.Genre},
		{"Director", rec.Director},
		{"Actors", rec.Actors},
	} {
		if row.value != "" {
			b.WriteString(fmt.Sprintf("- **%s:** %s\n", row.label, row.value))
		}
	}

	b.WriteString("\n---\n\n")
	if rec.Plot != "" {
		b.WriteString(rec.Plot)
	} else {
		b.WriteString("*No plot available.*")
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("[View on IMDb](%s)\n", rec.IMDbURL()))

	return b.String()
}

// renderDetail builds the renderer on the event loop and renders off it.
func (a *App) renderDetail(rec *catalog.DetailRecord) tea.Cmd {
	r, rerr := a.getRenderer()
	return func() tea.Msg {
		md := DetailMarkdown(rec)
		if rerr != nil {
			return detailRenderedMsg{id: rec.ID, content: md}
		}

		rendered, err := r.Render(md)
		if err != nil {
			return detailRenderedMsg{id: rec.ID, content: md}
		}
		return detailRenderedMsg{id: rec.ID, content: rendered}
	}
}

func (a *App) openTitle(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.OpenTitle(id); err != nil {
			return errorMsg{err: wrapErr("opening IMDb page", err)}
		}
		return openedMsg{what: "IMDb page"}
	}
}

func (a *App) openPoster(posterURL string) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.OpenPoster(posterURL); err != nil {
			return errorMsg{err: wrapErr("opening poster", err)}
		}
		return openedMsg{what: "poster"}
	}
}
