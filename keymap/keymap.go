package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mapping holds the control bindings. Piano keys are bound separately, from
// the key code table.
type Mapping struct {
	Reset      key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	Record     key.Binding
	Play       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var DefaultMapping = Mapping{
	Reset: key.NewBinding(
		key.WithKeys(tea.KeyEsc.String()),
		key.WithHelp("esc", "release all keys"),
	),
	OctaveDown: key.NewBinding(
		key.WithKeys(tea.KeyLeft.String()),
		key.WithHelp("←", "octave down"),
	),
	OctaveUp: key.NewBinding(
		key.WithKeys(tea.KeyRight.String()),
		key.WithHelp("→", "octave up"),
	),
	Record: key.NewBinding(
		key.WithKeys(tea.KeyCtrlR.String()),
		key.WithHelp("ctrl+r", "start/stop recording"),
	),
	Play: key.NewBinding(
		key.WithKeys(tea.KeyCtrlP.String()),
		key.WithHelp("ctrl+p", "play recording"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String()),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (m Mapping) ShortHelp() []key.Binding {
	return []key.Binding{m.Help, m.Quit}
}

// FullHelp implements help.KeyMap.
func (m Mapping) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.OctaveDown, m.OctaveUp},
		{m.Record, m.Play},
		{m.Reset, m.Help, m.Quit},
	}
}
