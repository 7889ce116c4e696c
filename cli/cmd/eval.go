package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ardnew/formula/engine"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/pkg"
)

// Eval evaluates a formula, or converts an amount between currencies.
//
// The formula is taken from --eval, else from the --source files, else from
// the arguments joined with spaces. With --eval or --source the arguments
// are name=value bindings instead.
type Eval struct {
	Expr       string `help:"Formula to evaluate; arguments are name=value bindings" name:"eval"        placeholder:"FORMULA" short:"e"`
	Convert    bool   `help:"Convert currency: FROM TO AMOUNT"                       name:"convert"                           short:"c" xor:"mode"`
	ConvertUSD bool   `help:"Convert to US dollars: FROM AMOUNT"                     name:"convert-usd"                       short:"u" xor:"mode"`
	Output     string `help:"Result format"                                          name:"output"      default:"native"      short:"o" enum:"native,json,yaml"`

	Args []string `arg:"" help:"Formula text, bindings, or conversion arguments" name:"args" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng, err := engineFrom(ctx)
	if err != nil {
		return err
	}

	switch {
	case e.Convert:
		return e.convert(ctx, eng, "convertCurrency(from, to, amount)", "FROM TO AMOUNT")

	case e.ConvertUSD:
		return e.convert(ctx, eng, "convertToUSD(from, amount)", "FROM AMOUNT")
	}

	src, args, err := e.formula(ctx)
	if err != nil {
		return err
	}

	env, err := bindings(args)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "evaluate",
		slog.String("key", lang.SourceKey(src)),
		slog.Any("bindings", env.Names()))

	return e.report(ctx, eng.Evaluate(ctx, src, env))
}

// formula returns the formula text and the arguments left for bindings.
func (e *Eval) formula(ctx context.Context) (string, []string, error) {
	if e.Expr != "" {
		return e.Expr, e.Args, nil
	}

	if src, ok := sourcesFrom(ctx); ok {
		text, err := src.ReadAll()

		return text, e.Args, err
	}

	if len(e.Args) == 0 {
		return "", nil, ErrNoFormula
	}

	return strings.Join(e.Args, " "), nil, nil
}

// convert evaluates a currency formula over the positional arguments: the
// currency codes followed by the amount.
func (e *Eval) convert(ctx context.Context, eng *engine.Engine, formula, usage string) error {
	want := len(strings.Fields(usage))
	if len(e.Args) != want {
		return ErrUsage.
			With(slog.Int("want", want), slog.Int("got", len(e.Args))).
			Wrap(errors.New("expected " + usage))
	}

	raw := e.Args[want-1]

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return pkg.ErrInvalidAmount.Wrapf("%q", raw)
	}

	from := strings.ToUpper(e.Args[0])
	to := "USD"

	env := lang.NewEnvironment().
		Set("from", lang.NewString(from)).
		Set("amount", lang.NewFloat(amount))

	if want == 3 {
		to = strings.ToUpper(e.Args[1])
		env.Set("to", lang.NewString(to))
	}

	res := eng.Evaluate(ctx, formula, env)
	if !res.Success() || e.Output != "native" {
		return e.report(ctx, res)
	}

	converted, _ := res.Value().Float()
	stdout, _ := outputs(ctx)

	_, err = message.NewPrinter(language.English).
		Fprintf(stdout, "%.2f %s = %.2f %s\n", amount, from, converted, to)

	return err
}

// report is the structured form of a Result.
type report struct {
	Success bool   `json:"success"         yaml:"success"`
	Type    string `json:"type,omitempty"  yaml:"type,omitempty"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Kind    string `json:"kind,omitempty"  yaml:"kind,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func makeReport(res lang.Result) report {
	if !res.Success() {
		return report{Kind: res.Kind().String(), Error: res.Message()}
	}

	v := res.Value()

	return report{Success: true, Type: v.Type.String(), Value: v.Native()}
}

// report prints res in the selected output format. A failed evaluation is
// reported, not returned: the command still succeeds.
func (e *Eval) report(ctx context.Context, res lang.Result) error {
	stdout, stderr := outputs(ctx)

	if !res.Success() {
		log.DebugContext(ctx, "evaluation failed", slog.Any("result", res))
	}

	switch e.Output {
	case "json":
		data, err := json.Marshal(makeReport(res))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(stdout, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, makeReport(res))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = stdout.Write(data)

		return err
	}

	return printResult(stdout, stderr, res)
}

func printResult(stdout, stderr io.Writer, res lang.Result) error {
	if !res.Success() {
		_, err := fmt.Fprintln(stderr, "Error: "+res.Message())

		return err
	}

	_, err := fmt.Fprintln(stdout, "Result: "+res.Value().Display())

	return err
}
