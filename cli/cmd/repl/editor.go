package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/formula/engine"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

const defaultEditor = "vi"

// editSessionCommand implements [tea.ExecCommand] for the session
// edit-evaluate-retry loop. It writes the session bindings as def statements
// to a temp file, opens the user's editor, and evaluates the result into a
// fresh environment. On error the user is prompted to re-edit; declining
// exits the program.
type editSessionCommand struct {
	eng     *engine.Engine
	env     *lang.Environment
	ctx     func() context.Context
	result  *lang.Environment
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editSessionCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editSessionCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editSessionCommand) SetStderr(w io.Writer) { c.stderr = w }

// sessionSource renders env as formula source, one def per binding. Values
// with no literal form are kept as comments.
func sessionSource(env *lang.Environment) string {
	var b strings.Builder

	for name, v := range env.All() {
		switch v.Type {
		case lang.TypeRef, lang.TypeUnit:
			fmt.Fprintf(&b, "# %s = %s\n", name, v)

		default:
			fmt.Fprintf(&b, "def %s = %s\n", name, v)
		}
	}

	return b.String()
}

// Run executes the edit loop. An emptied file leaves result nil. If the user
// declines to re-edit after an error, Run returns [ErrEditDeclined].
func (c *editSessionCommand) Run() error {
	ctx := c.ctx()
	content := sessionSource(c.env)

	f, err := os.CreateTemp(os.TempDir(), "formula-repl-*.formula")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		env := lang.NewEnvironment()

		// Ref values cannot be written back; carry them over unchanged.
		for name, v := range c.env.All() {
			if v.Type == lang.TypeRef {
				env.Set(name, v)
			}
		}

		res := c.eng.Define(ctx, string(data), env)
		c.logger.TraceContext(
			ctx,
			"editor eval attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", res.Success()),
		)

		if res.Success() {
			c.result = env

			return nil
		}

		fmt.Fprintf(c.stderr, "\nError: %s\n", res.Message())
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// runEditor opens path in $EDITOR and returns the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
