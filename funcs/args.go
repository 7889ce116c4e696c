package funcs

import (
	"context"
	"strings"

	"github.com/ardnew/formula/lang"
)

// define builds a Func from a signature such as "pow(x, y)". A final
// parameter spelled "...name" makes the function variadic.
func define(sig, doc string, impl lang.Impl) lang.Func {
	name, rest, _ := strings.Cut(sig, "(")
	rest = strings.TrimSuffix(rest, ")")

	var params []string

	if strings.TrimSpace(rest) != "" {
		for p := range strings.SplitSeq(rest, ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}

	arity := len(params)
	if arity > 0 && strings.HasPrefix(params[arity-1], "...") {
		arity = lang.Variadic
	}

	return lang.Func{Name: name, Arity: arity, Params: params, Impl: impl, Doc: doc}
}

func nameOf(sig string) string {
	name, _, _ := strings.Cut(sig, "(")

	return name
}

// unary adapts a float64 function to a one-argument formula function.
func unary(sig, doc string, f func(float64) float64) lang.Func {
	name := nameOf(sig)

	return define(sig, doc, func(_ context.Context, args []lang.Value) (lang.Value, error) {
		x, err := number(name, args, 0)
		if err != nil {
			return lang.Value{}, err
		}

		return lang.NewFloat(f(x)), nil
	})
}

// binary adapts a two-argument float64 function.
func binary(sig, doc string, f func(float64, float64) float64) lang.Func {
	name := nameOf(sig)

	return define(sig, doc, func(_ context.Context, args []lang.Value) (lang.Value, error) {
		x, err := number(name, args, 0)
		if err != nil {
			return lang.Value{}, err
		}

		y, err := number(name, args, 1)
		if err != nil {
			return lang.Value{}, err
		}

		return lang.NewFloat(f(x, y)), nil
	})
}

func constant(name, doc string, x float64) lang.Func {
	return define(name+"()", doc, func(context.Context, []lang.Value) (lang.Value, error) {
		return lang.NewFloat(x), nil
	})
}

func mismatch(name string, i int, want string, got lang.Value) error {
	return lang.ErrTypeMismatch.Detailf(
		"%s: argument %d must be %s, got %s", name, i+1, want, got.Type)
}

func number(name string, args []lang.Value, i int) (float64, error) {
	f, ok := args[i].Float()
	if !ok {
		return 0, mismatch(name, i, "numeric", args[i])
	}

	return f, nil
}

func text(name string, args []lang.Value, i int) (string, error) {
	s, ok := args[i].Str()
	if !ok {
		return "", mismatch(name, i, "String", args[i])
	}

	return s, nil
}

func list(name string, args []lang.Value, i int) ([]lang.Value, error) {
	l, ok := args[i].List()
	if !ok {
		return nil, mismatch(name, i, "List", args[i])
	}

	return l, nil
}

// sequence reads a List of Strings, or a single String, skipping unit
// entries.
func sequence(name string, args []lang.Value, i int) ([]string, error) {
	switch v := args[i]; v.Type {
	case lang.TypeUnit:
		return nil, nil

	case lang.TypeString:
		s, _ := v.Str()

		return []string{s}, nil

	case lang.TypeList:
		elems, _ := v.List()
		out := make([]string, 0, len(elems))

		for _, e := range elems {
			if e.IsUnit() {
				continue
			}

			s, ok := e.Str()
			if !ok {
				return nil, lang.ErrTypeMismatch.Detailf(
					"%s: argument %d must contain only Strings, found %s", name, i+1, e.Type)
			}

			out = append(out, s)
		}

		return out, nil

	default:
		return nil, mismatch(name, i, "a String or List of Strings", v)
	}
}
