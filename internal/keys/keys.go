package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Copy    key.Binding
	Preview key.Binding
	Mark    key.Binding

	// Clip actions
	Pin    key.Binding
	Delete key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Type filters
	FilterText  key.Binding
	FilterCode  key.Binding
	FilterURL   key.Binding
	FilterImage key.Binding

	// Generation
	Generate key.Binding

	// Provider settings
	Providers key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Copy: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "copy to clipboard"),
		),
		Preview: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "preview"),
		),
		Mark: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "mark for generation"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin/unpin"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		FilterText: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "toggle text"),
		),
		FilterCode: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "toggle code"),
		),
		FilterURL: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "toggle url"),
		),
		FilterImage: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "toggle image"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate from marked"),
		),
		Providers: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "providers"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Copy, k.Mark,
		k.Pin, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Copy, k.Preview, k.Back, k.Quit},
		{k.Search, k.Command, k.Help},
		{k.FilterText, k.FilterCode, k.FilterURL, k.FilterImage},
		{k.Mark, k.Generate, k.Pin, k.Delete, k.Providers},
	}
}
