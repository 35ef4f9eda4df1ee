// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Back leaves results mode or cancels the current operation.
	Back key.Binding

	// Search triggers a search.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// CycleCorpus switches to the next corpus.
	CycleCorpus key.Binding

	// NewSearch starts a new search from results mode.
	NewSearch key.Binding

	// ToggleRerank enables or disables second-pass reranking.
	ToggleRerank key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		CycleCorpus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "corpus"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new search"),
		),
		ToggleRerank: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rerank"),
		),
	}
}

// ShortHelp returns the keybindings shown in input mode.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.CycleCorpus, k.Quit}
}

// ResultsHelp returns keybindings for results mode.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.CycleCorpus, k.Back}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
