package cmd

import (
	"strconv"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/pkg"
)

// ParseValue converts a command-line value: Integer when it has no decimal
// point, Float when it has one, and String when it is not a number.
func ParseValue(s string) lang.Value {
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return lang.NewFloat(f)
		}

		return lang.NewString(s)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return lang.NewInteger(n)
	}

	return lang.NewString(s)
}

// ParseBinding splits a name=value argument and converts the value with
// [ParseValue].
func ParseBinding(arg string) (string, lang.Value, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || !lang.IsIdentifier(name) {
		return "", lang.Value{}, pkg.ErrInvalidBinding.Wrapf("%q is not name=value", arg)
	}

	return name, ParseValue(raw), nil
}

// bindings builds an Environment from name=value arguments. Later
// arguments replace earlier ones with the same name.
func bindings(args []string) (*lang.Environment, error) {
	env := lang.NewEnvironment()

	for _, arg := range args {
		name, v, err := ParseBinding(arg)
		if err != nil {
			return nil, err
		}

		env.Set(name, v)
	}

	return env, nil
}
