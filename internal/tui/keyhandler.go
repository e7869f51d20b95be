package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/search"
	"github.com/pders01/popcorn/internal/storage"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kh.app.clearStatus()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewFilter:
		return kh.app.filterInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := kh.app.keys

	switch {
	case msg.String() == "ctrl+c":
		return kh.app, tea.Quit
	case key.Matches(msg, keys.Back):
		return kh.navigateBack()
	case key.Matches(msg, keys.Watched):
		return kh.enterWatched()
	case key.Matches(msg, keys.Filter):
		return kh.enterFilter()
	}

	switch msg.String() {
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		kh.focusList()
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// focusList moves focus from the input to the list below it when there is
// anything to select.
func (kh *KeyHandler) focusList() {
	switch kh.app.view {
	case ViewSearch:
		if len(kh.app.resultList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.resultList.Select(0)
		}
	case ViewFilter:
		if len(kh.app.filterList.Items()) > 0 {
			kh.app.filterInput.Blur()
			kh.app.filterList.Select(0)
		}
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		if items := kh.app.resultList.Items(); len(items) > 0 {
			if i, ok := items[0].(resultItem); ok {
				return kh.app, kh.app.openDetail(i.item.ID, ViewSearch)
			}
		}
	case ViewFilter:
		if items := kh.app.filterList.Items(); len(items) > 0 {
			if i, ok := items[0].(filterItem); ok {
				return kh.app, kh.app.openDetail(i.result.Entry.ID, ViewFilter)
			}
		}
	}
	return kh.app, nil
}

// delegateToTextInput passes the key to the focused input and reacts to
// edits.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewSearch:
		prev := sanitizeSearchInput(kh.app.searchInput.Value())
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)
		if next := sanitizeSearchInput(kh.app.searchInput.Value()); next != prev {
			return kh.app, tea.Batch(cmd, kh.app.setQuery(next))
		}
		return kh.app, cmd

	case ViewFilter:
		prev := kh.app.filterInput.Value()
		kh.app.filterInput, cmd = kh.app.filterInput.Update(msg)
		if next := kh.app.filterInput.Value(); next != prev {
			kh.app.applyFilter(sanitizeSearchInput(next))
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys

	switch {
	case key.Matches(msg, keys.Quit):
		return kh.app, tea.Quit, true
	case key.Matches(msg, keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, keys.Help):
		kh.app.help.ShowAll = !kh.app.help.ShowAll
		return kh.app, nil, true
	case key.Matches(msg, keys.Watched) && kh.app.view != ViewDeleteConfirm:
		model, cmd := kh.enterWatched()
		return model, cmd, true
	case key.Matches(msg, keys.Filter) && kh.app.view != ViewDeleteConfirm:
		model, cmd := kh.enterFilter()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewSearch:
		return kh.handleSearchListKeys(msg)
	case ViewDetail:
		return kh.handleDetailKeys(msg)
	case ViewWatched:
		return kh.handleWatchedKeys(msg)
	case ViewFilter:
		return kh.handleFilterListKeys(msg)
	case ViewDeleteConfirm:
		return kh.handleDeleteConfirmKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleSearchListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab", "/", "i":
		return kh.app, kh.app.searchInput.Focus(), true
	case "up":
		if kh.app.resultList.Index() == 0 {
			return kh.app, kh.app.searchInput.Focus(), true
		}
	case "enter":
		if i, ok := kh.app.resultList.SelectedItem().(resultItem); ok {
			return kh.app, kh.app.openDetail(i.item.ID, ViewSearch), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys
	st := kh.app.detail

	switch {
	case key.Matches(msg, keys.Rate):
		rating := int(msg.String()[0] - '0')
		if rating == 0 {
			rating = 10
		}
		if rating > kh.app.session.MaxRating() {
			kh.app.setStatus(MsgPickRating, StatusWarn)
			return kh.app, nil, true
		}
		kh.app.rating = rating
		return kh.app, nil, true

	case key.Matches(msg, keys.Select):
		kh.app.addWatched()
		return kh.app, nil, true

	case key.Matches(msg, keys.Open):
		if st.ID == "" {
			kh.app.setStatus(MsgNothingToOpen, StatusWarn)
			return kh.app, nil, true
		}
		return kh.app, kh.app.openTitle(st.ID), true

	case key.Matches(msg, keys.Poster):
		if st.Record == nil {
			kh.app.setStatus(MsgNothingToOpen, StatusWarn)
			return kh.app, nil, true
		}
		return kh.app, kh.app.openPoster(st.Record.PosterURL), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleWatchedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	i, ok := kh.app.watchedList.SelectedItem().(watchedItem)
	if !ok {
		return kh.app, nil, false
	}
	return kh.handleEntryKeys(msg, i.entry, ViewWatched)
}

func (kh *KeyHandler) handleFilterListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab", "/", "i":
		return kh.app, kh.app.filterInput.Focus(), true
	case "up":
		if kh.app.filterList.Index() == 0 {
			return kh.app, kh.app.filterInput.Focus(), true
		}
	}

	i, ok := kh.app.filterList.SelectedItem().(filterItem)
	if !ok {
		return kh.app, nil, false
	}
	return kh.handleEntryKeys(msg, i.result.Entry, ViewFilter)
}

// handleEntryKeys covers the actions shared by every list of watched
// entries.
func (kh *KeyHandler) handleEntryKeys(msg tea.KeyMsg, entry storage.WatchedEntry, from View) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys

	switch {
	case key.Matches(msg, keys.Select):
		return kh.app, kh.app.openDetail(entry.ID, from), true
	case key.Matches(msg, keys.Delete):
		e := entry
		kh.app.toDelete = &e
		kh.app.confirmFrom = from
		kh.app.view = ViewDeleteConfirm
		return kh.app, nil, true
	case key.Matches(msg, keys.Open):
		return kh.app, kh.app.openTitle(entry.ID), true
	case key.Matches(msg, keys.Poster):
		return kh.app, kh.app.openPoster(entry.PosterURL), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "enter", "y":
		kh.app.removeWatched()
		return kh.app, nil, true
	case "n":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}
	return kh.app, nil, true
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewSearch:
		kh.app.resultList, cmd = kh.app.resultList.Update(msg)
	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
	case ViewWatched:
		kh.app.watchedList, cmd = kh.app.watchedList.Update(msg)
	case ViewFilter:
		kh.app.filterList, cmd = kh.app.filterList.Update(msg)
	}
	return kh.app, cmd
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app

	switch app.view {
	case ViewSearch:
		if !app.searchInput.Focused() {
			return app, app.searchInput.Focus()
		}
		if app.searchInput.Value() != "" {
			app.searchInput.Reset()
			return app, app.setQuery("")
		}
		return app, tea.Quit

	case ViewDetail:
		app.leaveDetail(app.previousView)
		return app, kh.refocus()

	case ViewWatched:
		app.view = ViewSearch
		return app, app.searchInput.Focus()

	case ViewFilter:
		app.view = ViewWatched
		app.filterInput.Reset()
		app.filterList.SetItems(nil)
		return app, nil

	case ViewDeleteConfirm:
		app.view = app.confirmFrom
		app.toDelete = nil
		return app, nil

	default:
		return app, tea.Quit
	}
}

// refocus puts focus back on the list the detail view was opened from, so
// the next pick is one keystroke away.
func (kh *KeyHandler) refocus() tea.Cmd {
	switch kh.app.view {
	case ViewSearch:
		if len(kh.app.resultList.Items()) > 0 {
			kh.app.searchInput.Blur()
			return nil
		}
		return kh.app.searchInput.Focus()
	case ViewFilter:
		if len(kh.app.filterList.Items()) > 0 {
			kh.app.filterInput.Blur()
			return nil
		}
		return kh.app.filterInput.Focus()
	}
	return nil
}

func (kh *KeyHandler) enterWatched() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewDetail {
		kh.app.leaveDetail(ViewWatched)
	}
	kh.app.view = ViewWatched
	kh.app.searchInput.Blur()
	kh.app.filterInput.Blur()
	return kh.app, nil
}

func (kh *KeyHandler) enterFilter() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewDetail {
		kh.app.leaveDetail(ViewFilter)
	}
	kh.app.view = ViewFilter
	kh.app.searchInput.Blur()
	kh.app.applyFilter(sanitizeSearchInput(kh.app.filterInput.Value()))

	if ds, ok := kh.app.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			kh.app.setStatus(MsgIndexed(n), StatusInfo)
		}
	}
	return kh.app, kh.app.filterInput.Focus()
}

// sanitizeSearchInput sanitizes and limits search input length
func sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.app.keys
	h := func(b key.Binding) string {
		return b.Help().Key + ": " + b.Help().Desc
	}

	switch kh.app.view {
	case ViewSearch:
		if kh.app.searchInput.Focused() {
			return []string{"enter: first result", "tab: results", h(k.Watched), "esc: clear"}
		}
		return []string{"enter: details", "tab: search box", h(k.Watched), h(k.Help), h(k.Quit)}

	case ViewDetail:
		return []string{h(k.Rate), "enter: add", h(k.Open), h(k.Poster), h(k.Back)}

	case ViewWatched:
		help := []string{h(k.Filter), h(k.Back)}
		if len(kh.app.watchedList.Items()) > 0 {
			help = append([]string{"enter: details", h(k.Delete), h(k.Open), h(k.Poster)}, help...)
		}
		return help

	case ViewFilter:
		if kh.app.filterInput.Focused() {
			return []string{"tab: matches", "esc: back"}
		}
		return []string{"enter: details", h(k.Delete), h(k.Open), "tab: filter box", h(k.Back)}

	case ViewDeleteConfirm:
		return []string{"enter: confirm", "esc: cancel"}

	default:
		return []string{}
	}
}
