package repl

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
)

// command is a control-mode command. Its first name is the one listed and
// completed; the rest are aliases.
type command struct {
	names []string
	usage string
	run   func(m model, args []string) (model, tea.Cmd)
}

func commands() []command {
	return []command{
		{[]string{"help", "h", "?"}, "Print this help", model.help},
		{[]string{"list", "l"}, "List session variables", model.list},
		{[]string{"funcs", "f"}, "List functions matching a name or group", model.funcs},
		{[]string{"edit", "e"}, "Edit session definitions in $EDITOR", model.edit},
		{[]string{"reset", "r"}, "Forget session definitions", model.reset},
		{[]string{"clear", "c"}, "Clear the screen", model.clear},
		{[]string{"quit", "q", "exit"}, "Exit", model.quit},
	}
}

// commandNames returns the primary name of each command.
func commandNames() []string {
	var names []string

	for _, c := range commands() {
		names = append(names, c.names[0])
	}

	return names
}

func lookupCommand(name string) (command, bool) {
	i := slices.IndexFunc(commands(), func(c command) bool {
		return slices.Contains(c.names, name)
	})
	if i < 0 {
		return command{}, false
	}

	return commands()[i], true
}

// runCommand echoes and executes one control-mode line.
func (m model) runCommand(line string) (model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	c, ok := lookupCommand(fields[0])
	if !ok {
		return m, tea.Println(errorStyle.Render(
			fmt.Sprintf("unknown command %q (try help)", fields[0])))
	}

	m.logger.TraceContext(m.ctx(), "repl command",
		slog.String("command", c.names[0]),
		slog.Any("args", fields[1:]))

	m, cmd := c.run(m, fields[1:])

	return m, tea.Sequence(tea.Println(modeCtrl.echo(line)), cmd)
}

func (m model) help([]string) (model, tea.Cmd) {
	return m, tea.Println(helpText(m.keys))
}

// helpText describes the commands and key bindings.
func helpText(km keyMap) string {
	var b strings.Builder

	b.WriteString("\nCommands (Esc toggles command mode):\n\n")

	for _, c := range commands() {
		fmt.Fprintf(&b, "  %s %s\n",
			suggestionStyle.Render(fmt.Sprintf("%-6s", c.names[0])),
			hintStyle.Render(c.usage))
	}

	b.WriteString(`
Type a formula to evaluate it. Bindings made with def and let stay in the
session. Completions follow the cursor; Space accepts a candidate.

`)

	h := help.New()
	h.ShowAll = true
	b.WriteString(h.View(km))
	b.WriteString("\n")

	return b.String()
}

func (m model) list([]string) (model, tea.Cmd) {
	return m, tea.Println(listBindings(m.env))
}

func (m model) funcs(filters []string) (model, tea.Cmd) {
	return m, tea.Println(listFunctions(m.eng.Registry(), filters))
}

func (m model) reset([]string) (model, tea.Cmd) {
	m.env = lang.NewEnvironment()

	return m, tea.Println(hintStyle.Render("session cleared"))
}

func (m model) clear([]string) (model, tea.Cmd) { return m, tea.ClearScreen }

func (m model) quit([]string) (model, tea.Cmd) {
	m.quitting = true

	return m, tea.Quit
}

// editResultMsg ends a session edit. Both fields are nil when the user
// emptied the file.
type editResultMsg struct {
	env *lang.Environment
	err error
}

func (m model) edit([]string) (model, tea.Cmd) {
	c := &editSessionCommand{
		eng:    m.eng,
		env:    m.env,
		ctx:    m.ctx,
		logger: m.logger,
	}

	return m, tea.Exec(c, func(err error) tea.Msg {
		return editResultMsg{env: c.result, err: err}
	})
}

func (m model) finishEdit(msg editResultMsg) (model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, ErrEditDeclined):
		return m.quit(nil)

	case msg.err != nil:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))

	case msg.env == nil:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))
	}

	m.env = msg.env
	m.logger.DebugContext(m.ctx(), "session edited", slog.Int("bindings", m.env.Len()))

	return m, tea.Println(resultStyle.Render("✔ session updated"))
}
