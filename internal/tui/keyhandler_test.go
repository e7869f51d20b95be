package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/popcorn/internal/config"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
}

func TestKeyMap_FollowsConfig(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	cfg.Keys.Bindings.Watched = "v"

	keys := NewKeyMap(cfg.Keys)
	assert.Equal(t, []string{"alt+v"}, keys.Watched.Keys())
	assert.Equal(t, "alt+v", keys.Watched.Help().Key)
	assert.Contains(t, keys.Quit.Keys(), "ctrl+c")
	assert.Len(t, keys.FullHelp(), 4)
}

func TestKeyHandler_RatingKeys(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"1", 1},
		{"5", 5},
		{"9", 9},
		{"0", 10},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			app := newTestApp(t)
			app.view = ViewDetail

			app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
			assert.Equal(t, tt.want, app.rating)
		})
	}
}

func TestKeyHandler_RatingAboveScaleRejected(t *testing.T) {
	cfg := config.TestConfig()
	cfg.UI.MaxRating = 5
	app := newTestAppWithConfig(t, cfg)
	app.view = ViewDetail

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	assert.Equal(t, 0, app.rating)
	assert.Equal(t, StatusWarn, app.statusKind)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	assert.Equal(t, 5, app.rating)
}

func TestSanitizeSearchInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  matrix  ", "matrix"},
		{"the\tmatrix", "the matrix"},
		{"the   matrix\nreloaded", "the matrix reloaded"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSearchInput(tt.in))
	}
}

func TestGetHelpForCurrentView(t *testing.T) {
	app := newTestApp(t)

	for _, v := range []View{ViewSearch, ViewDetail, ViewWatched, ViewFilter, ViewDeleteConfirm} {
		app.view = v
		assert.NotEmpty(t, app.keyHandler.GetHelpForCurrentView(), v.String())
	}

	app.view = ViewDetail
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+o: open imdb")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "The Ma…", truncateEnd("The Matrix", 7))
	assert.Equal(t, "The Matrix", truncateEnd("The Matrix", 20))
	assert.Equal(t, "", truncateEnd("The Matrix", 0))
	assert.Equal(t, "The…rix", truncateMiddle("The Matrix", 7))
}
