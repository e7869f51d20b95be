package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/popcorn/internal/config"
)

// KeyMap holds the bindings the app intercepts. Navigation inside lists,
// inputs and the viewport is left to the bubbles components.
type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Help    key.Binding
	Watched key.Binding
	Filter  key.Binding
	Delete  key.Binding
	Open    key.Binding
	Poster  key.Binding
	Select  key.Binding
	Focus   key.Binding
	Rate    key.Binding
}

func NewKeyMap(cfg config.KeyConfig) KeyMap {
	mod := cfg.Modifier + "+"
	b := cfg.Bindings
	back := b.Back
	if back == "" {
		back = "esc"
	}

	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys(b.Quit, "ctrl+c"),
			key.WithHelp(b.Quit, "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys(back),
			key.WithHelp(back, "back"),
		),
		Help: key.NewBinding(
			key.WithKeys(b.Help),
			key.WithHelp(b.Help, "help"),
		),
		Watched: key.NewBinding(
			key.WithKeys(mod+b.Watched),
			key.WithHelp(mod+b.Watched, "watched"),
		),
		Filter: key.NewBinding(
			key.WithKeys(mod+b.Filter),
			key.WithHelp(mod+b.Filter, "filter watched"),
		),
		Delete: key.NewBinding(
			key.WithKeys(mod+b.Delete),
			key.WithHelp(mod+b.Delete, "delete"),
		),
		Open: key.NewBinding(
			key.WithKeys(mod+b.Open),
			key.WithHelp(mod+b.Open, "open imdb"),
		),
		Poster: key.NewBinding(
			key.WithKeys(mod+b.Poster),
			key.WithHelp(mod+b.Poster, "poster"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "rate"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Watched, k.Back, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Focus, k.Back},
		{k.Rate, k.Open, k.Poster},
		{k.Watched, k.Filter, k.Delete},
		{k.Help, k.Quit},
	}
}
