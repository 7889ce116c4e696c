package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Fmt parses a formula and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical formula syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree outline."`
	Tokens Tokens `cmd:""                    help:"List the lexical tokens."`
}

// compile reads and compiles the formula in source.
func compile(ctx context.Context, source, format string) (*lang.Program, error) {
	r, err := open(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prog, err := lang.CompileReader(ctx, r, lang.WithLogger(log.Default()))
	if err != nil {
		return nil, lang.WrapError(err).
			With(slog.String("format", format))
	}

	return prog, nil
}

// Native formats input as canonical formula syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width for nested blocks; 0 writes one line" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := compile(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	stdout, _ := outputs(ctx)

	return prog.Format(ctx, stdout, f.Indent)
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := compile(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	stdout, _ := outputs(ctx)

	if err := prog.FormatJSON(ctx, stdout, j.Indent); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 writes flow style" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := compile(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	stdout, _ := outputs(ctx)

	if err := prog.FormatYAML(ctx, stdout, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints an outline of the syntax tree.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := compile(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	stdout, _ := outputs(ctx)

	return prog.Print(stdout)
}

// Tokens lists the tokens of a formula.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	r, err := open(t.Source)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return ErrReadSource.With(slog.String("file", t.Source)).Wrap(err)
	}

	toks, err := lang.Lex(string(data))
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "tokens"))
	}

	stdout, _ := outputs(ctx)

	return lang.FormatTokens(stdout, toks)
}
