package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the playback and solve controls.
type keyMap struct {
	Start   key.Binding
	Back    key.Binding
	Play    key.Binding
	Forward key.Binding
	End     key.Binding
	Solve   key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "start"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "back"),
		),
		Play: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "play/pause"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "forward"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "end"),
		),
		Solve: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "solve"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel solve"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Play, k.Forward, k.Solve, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Back, k.Play, k.Forward, k.End},
		{k.Solve, k.Cancel},
		{k.Help, k.Quit},
	}
}
