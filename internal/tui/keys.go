package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// examKeyMap defines the keyboard shortcuts of the exam screen
type examKeyMap struct {
	Previous key.Binding
	Next     key.Binding
	Jump     key.Binding
	Select   key.Binding
	Submit   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

var examKeys = examKeyMap{
	Previous: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "jump"),
	),
	Select: key.NewBinding(
		key.WithKeys("a", "b", "c", "d", "A", "B", "C", "D"),
		key.WithHelp("a-d", "answer"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "submit anyway"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "keep answering"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap
func (k examKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Select, k.Submit, k.Quit}
}

// FullHelp implements help.KeyMap
func (k examKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Previous, k.Next, k.Jump},
		{k.Select, k.Submit, k.Quit},
	}
}
