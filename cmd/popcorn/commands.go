package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/popcorn/internal/browse"
	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/storage"
	"github.com/pders01/popcorn/internal/tui"
	"github.com/pders01/popcorn/internal/validation"
)

var (
	rateFlag  int
	findLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog without starting the UI",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		return runSearch(cmd.OutOrStdout(), e.session, strings.Join(args, " "))
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <imdb-id>",
	Short: "Show a movie's details, optionally rating it into the watched list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := validation.ValidateTitleID(args[0])
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		return runDetail(cmd.OutOrStdout(), e.session, id, rateFlag, e.cfg.UI.Detail.WordWrapMaxWidth)
	},
}

var watchedCmd = &cobra.Command{
	Use:   "watched",
	Short: "Inspect and edit the watched list",
}

var watchedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched movies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		printWatched(cmd.OutOrStdout(), e.manager.Entries())
		return nil
	},
}

var watchedSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show watched list averages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		fmt.Fprintln(cmd.OutOrStdout(), tui.MsgSummary(e.manager.Summary()))
		return nil
	},
}

var watchedRmCmd = &cobra.Command{
	Use:   "rm <imdb-id>",
	Short: "Remove a movie from the watched list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := validation.ValidateTitleID(args[0])
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		entry, ok := e.manager.Get(id)
		if !ok {
			return fmt.Errorf("%s is not in the watched list", id)
		}
		if err := e.session.RemoveWatched(id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.MsgRemovedWatched(entry.Title))
		return nil
	},
}

var watchedFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search the watched list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := e.searcher.Search(strings.Join(args, " "), findLimit)
		if err != nil {
			return err
		}
		entries := make([]storage.WatchedEntry, len(results))
		for i, r := range results {
			entries[i] = r.Entry
		}
		printWatched(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	detailCmd.Flags().IntVar(&rateFlag, "rate", 0, "Add the movie to the watched list with this rating")
	watchedFindCmd.Flags().IntVar(&findLimit, "limit", 20, "Maximum number of matches")
	watchedCmd.AddCommand(watchedListCmd, watchedSummaryCmd, watchedRmCmd, watchedFindCmd)
}

// runSearch drives the search controller to completion and prints the
// outcome.
func runSearch(w io.Writer, s *browse.Session, query string) error {
	s.Drain(s.SetQuery(query))

	out := s.Search.Outcome()
	switch out.Status {
	case browse.SearchFailed:
		return fmt.Errorf("search %q: %s", out.Query, out.Err)
	case browse.SearchEmpty:
		fmt.Fprintln(w, tui.MsgNoResults)
		return nil
	}
	if len(out.Items) == 0 {
		fmt.Fprintln(w, tui.MsgTypeMore)
		return nil
	}

	rows := make([][]string, len(out.Items))
	for i, it := range out.Items {
		mark := ""
		if s.Watched.Contains(it.ID) {
			mark = "✓"
		}
		rows[i] = []string{it.ID, it.Title, it.Year, it.MediaType, mark}
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "TITLE", "YEAR", "TYPE", "WATCHED"}, rows))
	fmt.Fprintln(w, tui.MsgResultsCount(len(out.Items)))
	return nil
}

// runDetail loads id and prints it. A positive rating also records it.
func runDetail(w io.Writer, s *browse.Session, id string, rating, wrap int) error {
	s.Drain(s.Select(id))

	st := s.Detail.State()
	if st.Status != browse.DetailLoaded {
		return fmt.Errorf("%s: %s", id, st.Err)
	}

	fmt.Fprintln(w, renderMarkdown(st.Record, wrap))
	if entry, ok := s.Watched.Get(id); ok {
		fmt.Fprintln(w, tui.MsgYouRated(entry.UserRating))
	}

	if rating == 0 {
		return nil
	}
	title := st.Record.Title
	if err := s.AddWatched(float64(rating)); err != nil {
		return fmt.Errorf("adding %s: %w", id, err)
	}
	fmt.Fprintln(w, tui.MsgAddedWatched(title, rating))
	return nil
}

func renderMarkdown(rec *catalog.DetailRecord, wrap int) string {
	md := tui.DetailMarkdown(rec)
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printWatched(w io.Writer, entries []storage.WatchedEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nothing found")
		return
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		runtime := ""
		if e.RuntimeMinutes > 0 {
			runtime = strconv.Itoa(e.RuntimeMinutes) + " min"
		}
		rows[i] = []string{
			e.ID,
			e.Title,
			e.Year,
			strconv.FormatFloat(e.UserRating, 'g', -1, 64),
			strconv.FormatFloat(e.ExternalRating, 'f', 1, 64),
			runtime,
		}
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "TITLE", "YEAR", "RATED", "IMDB", "RUNTIME"}, rows))
}

func renderTable(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(tui.SecondaryColor).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}
