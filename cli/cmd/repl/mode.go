package repl

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

// inputMode selects how a submitted line is handled: evaluated as formula
// source, or run as a control command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var prompts = [...]struct {
	text  string
	style lipgloss.Style
}{
	modeEval: {"➜ ", lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)},
	modeCtrl: {" :", lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)},
}

func (i inputMode) prompt() string {
	p := prompts[i]

	return p.style.Render(p.text)
}

// echo renders a submitted line as it appeared at the prompt.
func (i inputMode) echo(line string) string {
	return i.prompt() + inputStyle.Render(line)
}

// idleHint is shown below an empty input line.
func (i inputMode) idleHint() string {
	if i == modeCtrl {
		return "Type: " + strings.Join(commandNames(), ", ") + " (press Esc to return)"
	}

	return "Type a formula or press Esc for commands"
}

// draft is an unsubmitted input line and its cursor.
type draft struct {
	text   string
	cursor int
}

func draftOf(ti textinput.Model) draft {
	return draft{text: ti.Value(), cursor: ti.Position()}
}

func (d draft) restore(ti *textinput.Model) {
	ti.SetValue(d.text)
	ti.SetCursor(d.cursor)
}

// detour is the mode and input left behind when Alt navigation through
// command history began.
type detour struct {
	mode  inputMode
	draft draft
}

func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl), nil
	}

	return m.switchToMode(modeEval), nil
}

// switchToMode saves the input of the current mode and restores the input
// last left in mode.
func (m model) switchToMode(mode inputMode) model {
	m.drafts[m.mode] = draftOf(m.input)
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.drafts[mode].restore(&m.input)
	refreshMatches(&m, false)

	return m
}

// show puts history entry i on the input line, in the entry's mode.
func (m model) show(i int, e HistoryEntry) model {
	if e.Mode != m.mode {
		m = m.switchToMode(e.Mode)
	}

	m.at = i
	draft{text: e.Line, cursor: len(e.Line)}.restore(&m.input)
	refreshMatches(&m, false)

	return m
}

// fresh leaves history with an empty input line.
func (m model) fresh() model {
	m.at = m.history.Len()
	m.input.SetValue("")
	refreshMatches(&m, false)

	return m
}

// historyStep moves one entry through the history of both modes.
func (m model) historyStep(step int) (model, tea.Cmd) {
	i := m.at + step

	switch {
	case i < 0:
		return m, nil

	case i >= m.history.Len():
		return m.fresh(), nil
	}

	if e, err := m.history.GetEntry(i); err == nil {
		m = m.show(i, e)
	}

	return m, nil
}

// historyInMode moves to the nearest entry of the current mode.
func (m model) historyInMode(step int) (model, tea.Cmd) {
	if i, e, ok := m.history.Find(m.at, step, m.mode); ok {
		return m.show(i, e), nil
	}

	if step > 0 && m.at < m.history.Len() {
		return m.fresh(), nil
	}

	return m, nil
}

// historyCtrl walks command history from either mode. Running off either
// end returns to the mode and input where the walk began.
func (m model) historyCtrl(step int) (model, tea.Cmd) {
	if m.detour == nil {
		m.detour = &detour{mode: m.mode, draft: draftOf(m.input)}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	if i, e, ok := m.history.Find(m.at, step, modeCtrl); ok {
		return m.show(i, e), nil
	}

	d := *m.detour
	m.detour = nil

	if d.mode != m.mode {
		m = m.switchToMode(d.mode)
	}

	d.draft.restore(&m.input)
	m.at = m.history.Len()
	refreshMatches(&m, false)

	return m, nil
}
