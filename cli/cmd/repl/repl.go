package repl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/engine"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

var (
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

const defaultWidth = 80

// model is the Bubble Tea model of a REPL session.
type model struct {
	completion

	ctx     func() context.Context
	keys    keyMap
	input   textinput.Model
	eng     *engine.Engine
	env     *lang.Environment // session bindings
	logger  log.Logger
	history *History
	at      int      // history position, history.Len() on a new line
	detour  *detour  // set during Alt navigation
	drafts  [2]draft // input saved per mode
	width   int
	mode    inputMode

	quitting bool
}

// Run starts a REPL session. Definitions read from prelude, if not nil, are
// bound before the first prompt. History is kept in historyPath; an empty
// path keeps it in memory.
func Run(
	ctx context.Context,
	eng *engine.Engine,
	prelude io.Reader,
	historyPath string,
	logger log.Logger,
) (err error) {
	if eng == nil {
		return ErrNoEngine
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer func() { cancel(err) }()

	env, err := loadPrelude(ctx, eng, prelude)
	if err != nil {
		return err
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history unavailable", slog.Any("error", err))
	}

	logger.DebugContext(ctx, "repl start",
		slog.String("history", historyPath),
		slog.Int("entries", history.Len()),
		slog.Int("bindings", env.Len()))

	_, err = tea.NewProgram(
		newModel(ctx, eng, env, history, logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

func loadPrelude(ctx context.Context, eng *engine.Engine, r io.Reader) (*lang.Environment, error) {
	env := lang.NewEnvironment()
	if r == nil {
		return env, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if res := eng.Define(ctx, string(data), env); !res.Success() {
		return nil, res.Err()
	}

	return env, nil
}

func newModel(
	ctx context.Context,
	eng *engine.Engine,
	env *lang.Environment,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.CharLimit = 1024
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		completion: completion{selected: -1},
		ctx:        func() context.Context { return ctx },
		keys:       defaultKeyMap(),
		input:      ti,
		eng:        eng,
		env:        env,
		logger:     logger,
		history:    history,
		at:         history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.onKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(modeEval.prompt()) - 2

		return m, nil

	case editResultMsg:
		return m.finishEdit(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint renders the line below the input: the history position while
// browsing, a usage hint on an empty line, the signature of the function
// being called, or the completion candidates.
func (m model) hint() string {
	line := m.input.Value()

	switch {
	case m.at < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.at + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))

	case strings.TrimSpace(line) == "":
		return hintStyle.Render(m.mode.idleHint())
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(line, m.input.Position()); call.inCall {
			if sig, params := getSignature(m.eng.Registry(), call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.selected, m.cycling, m.width, m.isFunction)
}

// executeInput submits the input line in the current mode.
func (m model) executeInput() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.drafts = [2]draft{}
	m.input.SetValue("")

	if _, err := m.history.WriteWithMode(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctx(), "history write", slog.Any("error", err))
	}

	m.at = m.history.Len()

	if m.mode == modeCtrl {
		return m.runCommand(line)
	}

	res := m.eng.Define(m.ctx(), line, m.env)

	m.logger.TraceContext(m.ctx(), "repl eval",
		slog.String("input", line),
		slog.Any("result", res))

	return m, tea.Sequence(
		tea.Println(modeEval.echo(line)),
		tea.Println(renderResult(res)),
	)
}

func renderResult(res lang.Result) string {
	if !res.Success() {
		return errorStyle.Render("error: " + res.Message())
	}

	v := res.Value()

	return resultStyle.Render(v.Display()) + hintStyle.Render("  "+v.Type.String())
}
