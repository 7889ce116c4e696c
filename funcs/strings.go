package funcs

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/mung"

	"github.com/ardnew/formula/lang"
)

const vowels = "aeiouAEIOU"

// Strings returns the text analysis library.
//
// The counting functions take a sequence and total their counts across
// every entry.
func Strings() lang.Group {
	return lang.Group{
		Name: "strings",
		Funcs: []lang.Func{
			counter("countLetters(words)", "number of Unicode letters", countLetters),
			counter("countAllChars(words)", "number of characters, including spaces", utf8.RuneCountInString),
			counter("countWords(words)", "number of whitespace-separated words", countWords),
			counter("countVowels(words)", "number of vowels a, e, i, o, u in either case", countVowels),
			counter("countConsonants(words)", "letters that are not vowels",
				func(s string) int { return countLetters(s) - countVowels(s) }),
			define("averageWordLength(words)", "letters per word, 0 without words", averageWordLength),
			define("joinStrings(words, sep)", "join a sequence with a separator", joinStrings),

			transform("upper(s)", "convert to upper case", strings.ToUpper),
			transform("lower(s)", "convert to lower case", strings.ToLower),
			transform("trim(s)", "remove leading and trailing whitespace", strings.TrimSpace),
			define("length(s)", "number of characters in a String", length),
			define("prependItems(list, sep, ...items)", "prepend items to a separated list", prependItems),
		},
	}
}

func countLetters(s string) int {
	var n int

	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}

	return n
}

func countVowels(s string) int {
	var n int

	for _, r := range s {
		if strings.ContainsRune(vowels, r) {
			n++
		}
	}

	return n
}

func countWords(s string) int { return len(strings.Fields(s)) }

// counter sums f over every String of a sequence argument.
func counter(sig, doc string, f func(string) int) lang.Func {
	name := nameOf(sig)

	return define(sig, doc, func(_ context.Context, args []lang.Value) (lang.Value, error) {
		seq, err := sequence(name, args, 0)
		if err != nil {
			return lang.Value{}, err
		}

		var total int

		for _, s := range seq {
			total += f(s)
		}

		return lang.NewInteger(int64(total)), nil
	})
}

func transform(sig, doc string, f func(string) string) lang.Func {
	name := nameOf(sig)

	return define(sig, doc, func(_ context.Context, args []lang.Value) (lang.Value, error) {
		s, err := text(name, args, 0)
		if err != nil {
			return lang.Value{}, err
		}

		return lang.NewString(f(s)), nil
	})
}

func averageWordLength(_ context.Context, args []lang.Value) (lang.Value, error) {
	seq, err := sequence("averageWordLength", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	var letters, words int

	for _, s := range seq {
		letters += countLetters(s)
		words += countWords(s)
	}

	if words == 0 {
		return lang.NewFloat(0), nil
	}

	return lang.NewFloat(float64(letters) / float64(words)), nil
}

func joinStrings(_ context.Context, args []lang.Value) (lang.Value, error) {
	seq, err := sequence("joinStrings", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	sep, err := text("joinStrings", args, 1)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewString(strings.Join(seq, sep)), nil
}

func length(_ context.Context, args []lang.Value) (lang.Value, error) {
	s, err := text("length", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewInteger(int64(utf8.RuneCountInString(s))), nil
}

// prependItems(subject, sep, item...) places each item ahead of the
// sep-delimited subject list.
func prependItems(_ context.Context, args []lang.Value) (lang.Value, error) {
	if len(args) < 2 {
		return lang.Value{}, lang.ErrArityMismatch.Detailf(
			"prependItems expects at least 2, got %d", len(args))
	}

	subject, err := text("prependItems", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	sep, err := text("prependItems", args, 1)
	if err != nil {
		return lang.Value{}, err
	}

	items := make([]string, 0, len(args)-2)

	for i := 2; i < len(args); i++ {
		seq, err := sequence("prependItems", args, i)
		if err != nil {
			return lang.Value{}, err
		}

		items = append(items, seq...)
	}

	return lang.NewString(mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(sep),
		mung.WithPrefixItems(items...),
	).String()), nil
}
