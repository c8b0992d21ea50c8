package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Presenting
	Low      key.Binding
	Normal   key.Binding
	Critical key.Binding
	Position key.Binding

	// Interacting with the current toast
	Tap        key.Binding
	TapScreen  key.Binding
	SwipeUp    key.Binding
	SwipeDown  key.Binding
	Hold       key.Binding
	Dismiss    key.Binding
	DismissAll key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Normal, k.Tap, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Low, k.Normal, k.Critical, k.Position},
		{k.Tap, k.TapScreen, k.SwipeUp, k.SwipeDown},
		{k.Hold, k.Dismiss, k.DismissAll},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Low: key.NewBinding(
			key.WithKeys("1", "l"),
			key.WithHelp("1/l", "low toast"),
		),
		Normal: key.NewBinding(
			key.WithKeys("2", "n"),
			key.WithHelp("2/n", "normal toast"),
		),
		Critical: key.NewBinding(
			key.WithKeys("3", "c"),
			key.WithHelp("3/c", "critical toast"),
		),
		Position: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle top/bottom"),
		),
		Tap: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "tap toast"),
		),
		TapScreen: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "tap screen"),
		),
		SwipeUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "swipe up"),
		),
		SwipeDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "swipe down"),
		),
		Hold: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hold/release"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dismiss all"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
