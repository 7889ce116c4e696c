package repl

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"

	tea "github.com/charmbracelet/bubbletea"
)

// keyMap binds the REPL actions to keys. It implements [help.KeyMap] so the
// help command can list the bindings.
type keyMap struct {
	Submit      key.Binding
	Next        key.Binding
	Prev        key.Binding
	Mode        key.Binding
	Older       key.Binding
	Newer       key.Binding
	OlderInMode key.Binding
	NewerInMode key.Binding
	OlderCtrl   key.Binding
	NewerCtrl   key.Binding
	Interrupt   key.Binding
	EOF         key.Binding
}

func binding(k, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:      binding("enter", "evaluate, or accept the candidate"),
		Next:        binding("tab", "next candidate"),
		Prev:        binding("shift+tab", "previous candidate"),
		Mode:        binding("esc", "toggle command mode"),
		Older:       binding("up", "older entry"),
		Newer:       binding("down", "newer entry"),
		OlderInMode: binding("shift+up", "older entry in this mode"),
		NewerInMode: binding("shift+down", "newer entry in this mode"),
		OlderCtrl:   binding("alt+up", "older command"),
		NewerCtrl:   binding("alt+down", "newer command"),
		Interrupt:   binding("ctrl+c", "clear line, exit if empty"),
		EOF:         binding("ctrl+d", "exit if empty"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Mode, k.Interrupt}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Mode},
		{k.Older, k.Newer, k.OlderInMode, k.NewerInMode},
		{k.OlderCtrl, k.NewerCtrl, k.Interrupt, k.EOF},
	}
}

func (m model) onKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl key", slog.String("key", msg.String()))

	k := m.keys

	switch {
	case key.Matches(msg, k.Interrupt):
		return m.interrupt()

	case key.Matches(msg, k.EOF):
		if m.input.Value() == "" {
			return m.quit(nil)
		}

		return m, nil

	case key.Matches(msg, k.Submit):
		return m.accept()

	case key.Matches(msg, k.Next):
		return m.cycle(1)

	case key.Matches(msg, k.Prev):
		return m.cycle(-1)

	case key.Matches(msg, k.Mode):
		return m.escape()

	case key.Matches(msg, k.Older):
		return m.historyStep(-1)

	case key.Matches(msg, k.Newer):
		return m.historyStep(1)

	case key.Matches(msg, k.OlderInMode):
		return m.historyInMode(-1)

	case key.Matches(msg, k.NewerInMode):
		return m.historyInMode(1)

	case key.Matches(msg, k.OlderCtrl):
		return m.historyCtrl(-1)

	case key.Matches(msg, k.NewerCtrl):
		return m.historyCtrl(1)
	}

	return m.typeKey(msg)
}

// typeKey passes msg to the input line. Typing keeps tab-cycling and Alt
// navigation alive; a space ends cycling and any other key ends both.
func (m model) typeKey(msg tea.KeyMsg) (model, tea.Cmd) {
	typing := false

	switch msg.Type {
	case tea.KeyRunes:
		typing = true

	case tea.KeySpace:
		typing = true
		m.cycling = false

	default:
		m.cycling = false
		m.detour = nil
	}

	var cmd tea.Cmd

	m.at = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, typing)

	return m, cmd
}

func (m model) interrupt() (model, tea.Cmd) {
	if m.input.Value() == "" {
		return m.quit(nil)
	}

	m.input.SetValue("")
	m.cycling = false
	m.detour = nil
	m.at = m.history.Len()
	refreshMatches(&m, false)

	return m, nil
}

// accept submits the line, or locks in the selected candidate while
// tab-cycling.
func (m model) accept() (model, tea.Cmd) {
	m.detour = nil

	if !m.cycling || len(m.matches) == 0 {
		return m.executeInput()
	}

	m.cycling = false
	refreshMatches(&m, true)

	return m, nil
}

// escape undoes tab-cycling if active, otherwise toggles the mode.
func (m model) escape() (model, tea.Cmd) {
	if m.cycling {
		m.cycling = false
		m.before.restore(&m.input)
		refreshMatches(&m, false)

		return m, nil
	}

	m.detour = nil

	return m.toggleMode()
}
