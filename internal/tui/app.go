package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/popcorn/internal/browse"
	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/media"
	"github.com/pders01/popcorn/internal/search"
	"github.com/pders01/popcorn/internal/storage"
)

// Lines of chrome around the main area: separator and status bar.
const statusChrome = 2

type App struct {
	config     *config.Config
	session    *browse.Session
	searcher   search.Searcher
	launcher   *media.Launcher
	keyHandler *KeyHandler
	keys       KeyMap

	searchInput textinput.Model
	filterInput textinput.Model
	resultList  list.Model
	watchedList list.Model
	filterList  list.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view         View
	previousView View // where the detail view returns to
	confirmFrom  View

	outcome    browse.SearchOutcome
	detail     browse.DetailState
	renderedID string
	rating     int
	toDelete   *storage.WatchedEntry
	spinning   bool

	status     string
	statusKind StatusKind
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp builds the UI around a session. searcher may be nil, in which case
// the filter view finds nothing.
func NewApp(session *browse.Session, searcher search.Searcher, cfg *config.Config) *App {
	ApplyTheme(cfg.UI.Colors)

	resultList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "› results"
	resultList.SetShowStatusBar(false)
	resultList.SetShowHelp(false)
	resultList.SetFilteringEnabled(false)

	watchedList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	watchedList.Title = "› watched"
	watchedList.SetShowStatusBar(false)
	watchedList.SetShowHelp(false)
	watchedList.SetFilteringEnabled(false)

	filterList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	filterList.Title = "› matches"
	filterList.SetShowStatusBar(false)
	filterList.SetShowHelp(false)
	filterList.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search movies..."
	si.CharLimit = 256
	si.Focus()

	fi := textinput.New()
	fi.Placeholder = "Filter watched movies..."
	fi.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	app := &App{
		config:       cfg,
		session:      session,
		searcher:     searcher,
		launcher:     media.NewLauncher(cfg),
		keys:         NewKeyMap(cfg.Keys),
		searchInput:  si,
		filterInput:  fi,
		resultList:   resultList,
		watchedList:  watchedList,
		filterList:   filterList,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		help:         help.New(),
		view:         ViewSearch,
		previousView: ViewSearch,
		outcome:      session.Search.Outcome(),
		detail:       session.Detail.State(),
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	session.Search.OnResult(app.onSearchOutcome)
	session.Detail.OnChange(app.onDetailChange)
	session.Watched.OnChange(app.onWatchedChange)
	app.onWatchedChange(session.Watched.Entries())

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 100
	}
	minWidth := a.config.UI.Detail.WordWrapMinWidth
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.EnterAltScreen,
	)
}

// Shutdown cancels outstanding requests. Call it after the program exits.
func (a *App) Shutdown() {
	a.session.Shutdown()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := a.session.Update(msg); handled {
		return a, tea.Batch(cmd, a.afterCore())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		model, cmd := a.keyHandler.HandleKey(msg)
		return model, tea.Batch(cmd, a.afterCore())

	case spinner.TickMsg:
		if !a.loading() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case detailRenderedMsg:
		if a.detail.Status == browse.DetailLoaded && msg.id == a.detail.ID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case openedMsg:
		a.setStatus("Opened "+msg.what, StatusInfo)
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	return a, a.updateComponents(msg)
}

// updateComponents forwards messages the app does not own (cursor blinks,
// mouse events) to the widgets of the current view.
func (a *App) updateComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch a.view {
	case ViewSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
		cmds = append(cmds, cmd)
		a.resultList, cmd = a.resultList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewDetail:
		if _, ok := msg.(tea.MouseMsg); ok {
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	case ViewWatched:
		a.watchedList, cmd = a.watchedList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewFilter:
		a.filterInput, cmd = a.filterInput.Update(msg)
		cmds = append(cmds, cmd)
		a.filterList, cmd = a.filterList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// afterCore starts work that follows from a core state change: rendering
// a freshly loaded record.
func (a *App) afterCore() tea.Cmd {
	st := a.detail
	if st.Status == browse.DetailLoaded && st.Record != nil && a.renderedID != st.ID {
		a.renderedID = st.ID
		a.viewport.SetContent(renderMuted("Rendering…"))
		return a.renderDetail(st.Record)
	}
	return nil
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.help.Width = width

	// Search and filter views stack a header, a framed input and a hint
	// line above the list.
	listHeight := height - statusChrome - 7
	if listHeight < 5 {
		listHeight = 5
	}
	a.resultList.SetSize(width, listHeight)
	a.filterList.SetSize(width, listHeight)

	watchedHeight := height - statusChrome - 2
	if watchedHeight < 5 {
		watchedHeight = 5
	}
	a.watchedList.SetSize(width, watchedHeight)

	a.viewport.Width = width
	a.viewport.Height = height - statusChrome - 3
	if a.viewport.Height < 3 {
		a.viewport.Height = 3
	}

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
	a.filterInput.Width = inputWidth
}

func (a *App) loading() bool {
	return a.outcome.Status == browse.SearchLoading || a.detail.Status == browse.DetailLoading
}

// startSpinner returns the first tick unless one is already running.
func (a *App) startSpinner() tea.Cmd {
	if a.spinning || !a.loading() {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
	a.err = nil
}

func (a *App) onSearchOutcome(o browse.SearchOutcome) {
	a.outcome = o
	switch o.Status {
	case browse.SearchResults:
		a.setResultItems(o.Items)
	case browse.SearchLoading, browse.SearchEmpty, browse.SearchFailed:
		// Items from the previous query must not stay selectable.
		a.setResultItems(nil)
	}
}

func (a *App) setResultItems(results []catalog.SearchResultItem) {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{item: r, watched: a.session.Watched.Contains(r.ID)}
	}
	a.resultList.SetItems(items)
}

func (a *App) onDetailChange(st browse.DetailState) {
	if st.ID != a.detail.ID {
		a.rating = 0
	}
	a.detail = st

	switch st.Status {
	case browse.DetailIdle:
		a.renderedID = ""
		a.viewport.SetContent("")
		if a.view == ViewDetail {
			a.view = a.previousView
		}
	case browse.DetailLoading:
		a.renderedID = ""
		a.viewport.SetContent("")
	}
}

func (a *App) onWatchedChange(entries []storage.WatchedEntry) {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = watchedItem{entry: e}
	}
	a.watchedList.SetItems(items)

	if a.outcome.Status == browse.SearchResults {
		a.setResultItems(a.outcome.Items)
	}
	if a.view == ViewFilter {
		a.applyFilter(a.filterInput.Value())
	}
}

// setQuery hands the typed text to the search controller.
func (a *App) setQuery(text string) tea.Cmd {
	cmd := a.session.SetQuery(text)
	return tea.Batch(cmd, a.startSpinner())
}

// applyFilter runs the watched index on the event loop; both engines are
// local and fast.
func (a *App) applyFilter(query string) {
	if a.searcher == nil {
		a.filterList.SetItems(nil)
		return
	}
	results, err := a.searcher.Search(query, 50)
	if err != nil {
		a.err = wrapErr("filtering watched", err)
		return
	}
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = filterItem{result: r}
	}
	a.filterList.SetItems(items)
}

// openDetail selects id and switches to the detail view, remembering where
// to return.
func (a *App) openDetail(id string, from View) tea.Cmd {
	cmd := a.session.Select(id)
	if !a.session.Selection.IsOpen() {
		return nil
	}
	a.previousView = from
	a.view = ViewDetail
	return tea.Batch(cmd, a.startSpinner())
}

// leaveDetail switches to target and closes the open selection.
func (a *App) leaveDetail(target View) {
	a.view = target
	a.session.Close()
}

func (a *App) addWatched() {
	if a.rating == 0 {
		a.setStatus(MsgPickRating, StatusWarn)
		return
	}
	title := ""
	if a.detail.Record != nil {
		title = a.detail.Record.Title
	}
	rating := a.rating
	if err := a.session.AddWatched(float64(rating)); err != nil {
		a.err = wrapErr("adding to watched", err)
		return
	}
	a.rating = 0
	a.setStatus(MsgAddedWatched(title, rating), StatusSuccess)
}

func (a *App) removeWatched() {
	if a.toDelete == nil {
		return
	}
	entry := *a.toDelete
	a.toDelete = nil
	a.view = a.confirmFrom

	if err := a.session.RemoveWatched(entry.ID); err != nil {
		a.err = wrapErr("removing from watched", err)
		return
	}
	a.setStatus(MsgRemovedWatched(entry.Title), StatusSuccess)
}

func (a *App) View() string {
	mainHeight := a.height - statusChrome
	if a.help.ShowAll {
		mainHeight -= lipgloss.Height(a.help.View(a.keys))
	}
	if mainHeight < 1 {
		mainHeight = 1
	}

	var content string
	switch a.view {
	case ViewSearch:
		content = a.searchView(mainHeight)
	case ViewDetail:
		content = a.detailView(mainHeight)
	case ViewWatched:
		content = a.watchedView()
	case ViewFilter:
		content = a.filterView()
	case ViewDeleteConfirm:
		content = a.deleteConfirmView(mainHeight)
	}

	content = ContentWrapper(a.width, mainHeight).Render(content)

	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	rows := []string{content}
	if a.help.ShowAll {
		rows = append(rows, a.help.View(a.keys))
	}
	rows = append(rows, separator, a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func (a *App) searchView(height int) string {
	header := renderHeader(CompactLogo+" search", MsgSummary(a.session.Watched.Summary()), a.width)
	input := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	var hint string
	if a.searchInput.Focused() {
		hint = "Type to search • Tab/↓: results • " + a.keys.Watched.Help().Key + ": watched"
	} else {
		hint = "↑↓: navigate • Enter: details • Tab: search box"
	}

	var body string
	switch a.outcome.Status {
	case browse.SearchIdle:
		body = renderCentered(a.width, height-7, GetWelcomeMessage())
	case browse.SearchLoading:
		body = a.spinner.View() + " " + renderMuted(MsgSearching)
	case browse.SearchEmpty:
		body = renderMuted(MsgNoResults)
	case browse.SearchFailed:
		body = renderError(a.outcome.Err)
	default:
		if len(a.resultList.Items()) == 0 {
			body = renderMuted(MsgTypeMore)
		} else {
			body = a.resultList.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, input, renderHelp(hint), "", body)
}

func (a *App) detailView(height int) string {
	st := a.detail
	switch st.Status {
	case browse.DetailLoading:
		return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted(MsgLoadingDetail))
	case browse.DetailFailed:
		return renderCentered(a.width, height, lipgloss.JoinVertical(
			lipgloss.Center,
			renderError(st.Err),
			"",
			renderHelp("Esc: back"),
		))
	case browse.DetailIdle:
		return ""
	}

	var ratingLine string
	if entry, ok := a.session.Watched.Get(st.ID); ok {
		ratingLine = StatusSuccessStyle.Render(MsgYouRated(entry.UserRating))
	} else if a.rating > 0 {
		ratingLine = fmt.Sprintf("%s %s",
			StatusWarnStyle.Render(fmt.Sprintf("Your rating: %d/%d", a.rating, a.session.MaxRating())),
			renderHelp("Enter: add to watched"))
	} else {
		ratingLine = renderHelp(MsgPickRating)
	}

	title := "› " + st.ID
	if st.Record != nil {
		title = "› " + st.Record.Title
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		renderHeader(title, "", a.width),
		ratingLine,
		"",
		a.viewport.View(),
	)
}

func (a *App) watchedView() string {
	summary := MsgSummary(a.session.Watched.Summary())
	if len(a.watchedList.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Top,
			renderMuted(summary),
			"",
			renderCentered(a.width, 5, renderHelp("Rate a movie from its detail page to add it here")),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Top, renderMuted(summary), "", a.watchedList.View())
}

func (a *App) filterView() string {
	header := renderHeader("› filter watched", "", a.width)
	input := renderInputFrame(a.filterInput.View(), a.filterInput.Focused(), a.filterInput.Width)

	var body string
	switch {
	case len([]rune(strings.TrimSpace(a.filterInput.Value()))) < search.MinQueryLength:
		body = renderMuted(MsgTypeMore)
	case len(a.filterList.Items()) == 0:
		body = renderMuted(MsgNoResults)
	default:
		body = lipgloss.JoinVertical(lipgloss.Top,
			renderMuted(MsgResultsCount(len(a.filterList.Items()))),
			a.filterList.View())
	}

	return lipgloss.JoinVertical(lipgloss.Top, header, input, "", body)
}

func (a *App) deleteConfirmView(height int) string {
	name := "Unknown movie"
	if a.toDelete != nil {
		name = a.toDelete.Title
		if a.toDelete.Year != "" {
			name = fmt.Sprintf("%s (%s)", name, a.toDelete.Year)
		}
	}

	modalWidth := (a.width * 4) / 5
	if modalWidth < 20 {
		modalWidth = a.width - 4
		if modalWidth < 15 {
			modalWidth = a.width
		}
	}
	name = truncateEnd(name, modalWidth-4)

	return renderCentered(a.width, height, lipgloss.JoinVertical(
		lipgloss.Center,
		ErrorMessageStyle.Render("⚠ Remove from watched"),
		"",
		ModalTextStyle.Width(modalWidth).Align(lipgloss.Center).Render("Remove this movie and its rating?"),
		"",
		StatusWarnStyle.Bold(true).Width(modalWidth).Align(lipgloss.Center).Render(name),
		"",
		HelpStyle.Render("Enter: confirm • Esc: cancel"),
	))
}

func (a *App) statusBar() string {
	bar := lipgloss.NewStyle().Width(a.width).Padding(0, 1)

	switch {
	case a.loading():
		text := MsgSearching
		if a.detail.Status == browse.DetailLoading {
			text = MsgLoadingDetail
		}
		return bar.Render(a.spinner.View() + " " + StatusInfoStyle.Render(text))
	case a.err != nil:
		return bar.Render(StatusErrorStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	case a.status != "":
		return bar.Render(statusStyle(a.statusKind).Render(truncateEnd(a.status, a.width-2)))
	}

	commands := a.keyHandler.GetHelpForCurrentView()
	return bar.Foreground(MutedColor).Render(truncateMiddle(strings.Join(commands, " • "), a.width-2))
}
