package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Reset: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear result"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
