package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings of the upload screen
type keyMap struct {
	Browse       key.Binding
	Analyze      key.Binding
	OpenOriginal key.Binding
	OpenELA      key.Binding
	OpenPreview  key.Binding
	Dismiss      key.Binding
	Back         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "browse"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a/enter", "analyze"),
		),
		OpenOriginal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open original"),
		),
		OpenELA: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "open ELA"),
		),
		OpenPreview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "open preview"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter", "dismiss"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close picker"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Browse, k.Analyze, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Browse, k.Analyze, k.Back},
		{k.OpenOriginal, k.OpenELA, k.OpenPreview},
		{k.Help, k.Quit},
	}
}
