package funcs

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/ardnew/formula/lang"
)

// Collections returns functions over Lists, Maps and Strings.
func Collections() lang.Group {
	return lang.Group{
		Name: "collections",
		Funcs: []lang.Func{
			define("len(v)", "length of a String, List or Map", size),
			define("sum(list)", "total of a numeric List", sum),
			define("pluck(list, field)", "field of every Map in a List", pluck),
			define("keys(map)", "keys of a Map in order", keys),
			define("contains(collection, item)", "membership in a List, Map keys or String", contains),
			define("sort(list)", "ascending copy of a List of numbers or Strings", sortList),
		},
	}
}

func size(_ context.Context, args []lang.Value) (lang.Value, error) {
	switch args[0].Type {
	case lang.TypeString, lang.TypeList, lang.TypeMap:
		return lang.NewInteger(int64(args[0].Len())), nil

	default:
		return lang.Value{}, mismatch("len", 0, "a String, List or Map", args[0])
	}
}

func sum(_ context.Context, args []lang.Value) (lang.Value, error) {
	elems, err := list("sum", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	var (
		ints   int64
		floats float64
		isInt  = true
	)

	for _, e := range elems {
		if n, ok := e.Int(); ok && isInt {
			ints += n

			continue
		}

		f, ok := e.Float()
		if !ok {
			return lang.Value{}, lang.ErrTypeMismatch.Detailf(
				"sum: List must contain only numbers, found %s", e.Type)
		}

		if isInt {
			floats, isInt = float64(ints), false
		}

		floats += f
	}

	if isInt {
		return lang.NewInteger(ints), nil
	}

	return lang.NewFloat(floats), nil
}

func pluck(_ context.Context, args []lang.Value) (lang.Value, error) {
	elems, err := list("pluck", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	field, err := text("pluck", args, 1)
	if err != nil {
		return lang.Value{}, err
	}

	out := make([]lang.Value, len(elems))

	for i, e := range elems {
		if e.Type != lang.TypeMap {
			return lang.Value{}, lang.ErrTypeMismatch.Detailf(
				"pluck: element %d is %s, not Map", i, e.Type)
		}

		out[i], _ = e.Field(field)
	}

	return lang.NewList(out...), nil
}

func keys(_ context.Context, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeMap {
		return lang.Value{}, mismatch("keys", 0, "Map", args[0])
	}

	ks := args[0].Keys()
	out := make([]lang.Value, len(ks))

	for i, k := range ks {
		out[i] = lang.NewString(k)
	}

	return lang.NewList(out...), nil
}

func contains(_ context.Context, args []lang.Value) (lang.Value, error) {
	haystack, needle := args[0], args[1]

	switch haystack.Type {
	case lang.TypeList:
		elems, _ := haystack.List()

		return lang.NewBoolean(slices.ContainsFunc(elems, needle.Equal)), nil

	case lang.TypeMap:
		k, err := text("contains", args, 1)
		if err != nil {
			return lang.Value{}, err
		}

		_, ok := haystack.Field(k)

		return lang.NewBoolean(ok), nil

	case lang.TypeString:
		s, _ := haystack.Str()

		sub, err := text("contains", args, 1)
		if err != nil {
			return lang.Value{}, err
		}

		return lang.NewBoolean(strings.Contains(s, sub)), nil

	default:
		return lang.Value{}, mismatch("contains", 0, "a List, Map or String", haystack)
	}
}

func sortList(_ context.Context, args []lang.Value) (lang.Value, error) {
	elems, err := list("sort", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	out := slices.Clone(elems)
	if len(out) == 0 {
		return lang.NewList(), nil
	}

	numeric := out[0].IsNumeric()

	for _, e := range out {
		if numeric != e.IsNumeric() || (!numeric && e.Type != lang.TypeString) {
			return lang.Value{}, lang.ErrTypeMismatch.Detailf(
				"sort: cannot order %s with %s", out[0].Type, e.Type)
		}
	}

	if numeric {
		slices.SortStableFunc(out, func(a, b lang.Value) int {
			x, _ := a.Float()
			y, _ := b.Float()

			return cmp.Compare(x, y)
		})
	} else {
		slices.SortStableFunc(out, func(a, b lang.Value) int {
			x, _ := a.Str()
			y, _ := b.Str()

			return cmp.Compare(x, y)
		})
	}

	return lang.NewList(out...), nil
}
