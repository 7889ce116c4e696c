package funcs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/store"
)

func eval(t *testing.T, src string, env *lang.Environment, groups ...lang.Group) lang.Result {
	t.Helper()

	prog, err := lang.Compile(t.Context(), src)
	require.NoError(t, err)

	return lang.Evaluate(t.Context(), prog, env, lang.NewRegistry(groups...).Freeze())
}

func requireValue(t *testing.T, res lang.Result) lang.Value {
	t.Helper()
	require.True(t, res.Success(), "unexpected failure: %v", res.Err())

	return res.Value()
}

func TestMath(t *testing.T) {
	tests := []struct {
		src  string
		want lang.Value
	}{
		{"square(4)", lang.NewFloat(16)},
		{"cube(3)", lang.NewFloat(27)},
		{"percentage(200, 15)", lang.NewFloat(30)},
		{"discount(1000, 20)", lang.NewFloat(800)},
		{"sqrt(16) + pow(2, 3)", lang.NewFloat(12)},
		{"round(2.5)", lang.NewInteger(3)},
		{"round(-2.5)", lang.NewInteger(-2)},
		{"abs(-4)", lang.NewInteger(4)},
		{"abs(-4.5)", lang.NewFloat(4.5)},
		{"min(3, 2)", lang.NewInteger(2)},
		{"max(3, 2.5)", lang.NewFloat(3)},
		{"signum(-7)", lang.NewFloat(-1)},
		{"floor(2.7) + ceil(2.1)", lang.NewFloat(5)},
		{"hypot(3, 4)", lang.NewFloat(5)},
		{"toDegrees(pi())", lang.NewFloat(180)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := requireValue(t, eval(t, tt.src, nil, Math()))
			assert.Equal(t, tt.want.Type, got.Type)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestMath_Compound(t *testing.T) {
	got := requireValue(t, eval(t, "compound(1000, 5, 2)", nil, Math()))

	f, ok := got.Float()
	require.True(t, ok)
	assert.InDelta(t, 1102.5, f, 1e-9)
}

func TestMath_TypeMismatch(t *testing.T) {
	res := eval(t, `sqrt("16")`, nil, Math())

	assert.Equal(t, lang.KindTypeMismatch, res.Kind())
	assert.Contains(t, res.Message(), "sqrt: argument 1 must be numeric, got String")
}

func wordsEnv(words ...string) *lang.Environment {
	list := make([]lang.Value, len(words))
	for i, w := range words {
		list[i] = lang.NewString(w)
	}

	return lang.NewEnvironment().Set("words", lang.NewList(list...))
}

func TestStrings(t *testing.T) {
	tests := []struct {
		src   string
		words []string
		want  lang.Value
	}{
		{"countLetters(words)", []string{"Hello", "World", "Java"}, lang.NewInteger(14)},
		{"countVowels(words)", []string{"Hello", "Beautiful", "World"}, lang.NewInteger(8)},
		{"countConsonants(words)", []string{"Hello", "Beautiful", "World"}, lang.NewInteger(11)},
		{"countWords(words)", []string{"Hello World", "Groovy DSL", "Formula Engine"}, lang.NewInteger(6)},
		{"countAllChars(words)", []string{"a b", "cd"}, lang.NewInteger(5)},
		{
			"countLetters(words) + countWords(words) + countVowels(words)",
			[]string{"Java", "Groovy", "DSL", "Engine"},
			lang.NewInteger(30),
		},
		{`joinStrings(words, ", ")`, []string{"a", "b", "c"}, lang.NewString("a, b, c")},
		{"averageWordLength(words)", nil, lang.NewFloat(0)},
		{`countLetters("héllo, wörld")`, nil, lang.NewInteger(10)},
		{`upper("abc") + lower("DEF") + trim("  x ")`, nil, lang.NewString("ABCdefx")},
		{`length("héllo")`, nil, lang.NewInteger(5)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := requireValue(t, eval(t, tt.src, wordsEnv(tt.words...), Strings()))
			assert.Equal(t, tt.want.Type, got.Type)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestStrings_AverageWordLength(t *testing.T) {
	env := wordsEnv("Hello World", "Groovy DSL", "Formula Engine")
	got := requireValue(t, eval(t, "averageWordLength(words)", env, Strings()))

	f, ok := got.Float()
	require.True(t, ok)
	assert.InDelta(t, 5.333, f, 0.001)
}

func TestStrings_SkipsUnit(t *testing.T) {
	env := lang.NewEnvironment().Set("words",
		lang.NewList(lang.NewString("ab"), lang.Unit(), lang.NewString("c")))

	got := requireValue(t, eval(t, `joinStrings(words, "-")`, env, Strings()))
	assert.Equal(t, `ab-c`, got.Display())
}

func TestStrings_RejectsNonStrings(t *testing.T) {
	res := eval(t, "countLetters([1, 2])", nil, Strings())

	assert.Equal(t, lang.KindTypeMismatch, res.Kind())
	assert.Contains(t, res.Message(), "must contain only Strings")
}

func TestStrings_PrependItems(t *testing.T) {
	got := requireValue(t, eval(t, `prependItems("b:c", ":", "a")`, nil, Strings()))

	s, ok := got.Str()
	require.True(t, ok)
	assert.Regexp(t, `^a:`, s)
	assert.Contains(t, s, "b")
	assert.Contains(t, s, "c")

	res := eval(t, `prependItems("b")`, nil, Strings())
	assert.Equal(t, lang.KindArityMismatch, res.Kind())
}

func TestCollections(t *testing.T) {
	tests := []struct {
		src  string
		want lang.Value
	}{
		{"len([1, 2, 3])", lang.NewInteger(3)},
		{`len({a: 1})`, lang.NewInteger(1)},
		{`len("abc")`, lang.NewInteger(3)},
		{"sum([1, 2, 3])", lang.NewInteger(6)},
		{"sum([1, 2.5])", lang.NewFloat(3.5)},
		{"sum([])", lang.NewInteger(0)},
		{`pluck([{n: 1}, {n: 2}, {m: 3}], "n")`, lang.NewList(lang.NewInteger(1), lang.NewInteger(2), lang.Unit())},
		{`keys({b: 1, a: 2})`, lang.NewList(lang.NewString("b"), lang.NewString("a"))},
		{"contains([1, 2], 2.0)", lang.NewBoolean(true)},
		{`contains({a: 1}, "b")`, lang.NewBoolean(false)},
		{`contains("formula", "mul")`, lang.NewBoolean(true)},
		{"sort([3, 1.5, 2])", lang.NewList(lang.NewFloat(1.5), lang.NewInteger(2), lang.NewInteger(3))},
		{`sort(["b", "a"])`, lang.NewList(lang.NewString("a"), lang.NewString("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := requireValue(t, eval(t, tt.src, nil, Collections()))
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCollections_Errors(t *testing.T) {
	for _, src := range []string{`sum(["a"])`, `sort([1, "a"])`, "len(1)", "keys([])", `pluck([1], "x")`} {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, lang.KindTypeMismatch, eval(t, src, nil, Collections()).Kind())
		})
	}
}

type stubConverter struct {
	rates map[string]float64 // "FROM/TO" -> rate
	err   error
}

func (s stubConverter) ExchangeRate(_ context.Context, from, to string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}

	r, ok := s.rates[from+"/"+to]
	if !ok {
		return 0, lang.ErrUnknownCurrency.Detailf("%s", to)
	}

	return r, nil
}

func (s stubConverter) Convert(ctx context.Context, from, to string, amount float64) (float64, error) {
	r, err := s.ExchangeRate(ctx, from, to)

	return amount * r, err
}

func (s stubConverter) ConvertToUSD(ctx context.Context, from string, amount float64) (float64, error) {
	return s.Convert(ctx, from, "USD", amount)
}

func TestCurrency(t *testing.T) {
	conv := stubConverter{rates: map[string]float64{"EUR/USD": 1.1}}

	got := requireValue(t, eval(t, `convertToUSD("EUR", 100)`, nil, Currency(conv)))
	f, _ := got.Float()
	assert.InDelta(t, 110.0, f, 1e-9)

	got = requireValue(t, eval(t, `exchangeRate("EUR", "USD")`, nil, Currency(conv)))
	assert.True(t, got.Equal(lang.NewFloat(1.1)))

	res := eval(t, `convertCurrency("EUR", "XYZ", 1)`, nil, Currency(conv))
	assert.Equal(t, lang.KindUnknownCurrency, res.Kind())
}

func TestCurrency_Failures(t *testing.T) {
	cause := errors.New("connection refused")

	res := eval(t, `convertToUSD("EUR", 1)`, nil, Currency(stubConverter{err: cause}))
	assert.Equal(t, lang.KindServiceUnavailable, res.Kind())
	assert.ErrorIs(t, res.Err(), cause)

	res = eval(t, `convertToUSD("EUR", 1)`, nil, Currency(nil))
	assert.Equal(t, lang.KindServiceUnavailable, res.Kind())

	res = eval(t, `convertToUSD(1, 1)`, nil, Currency(nil))
	assert.Equal(t, lang.KindTypeMismatch, res.Kind())
}

func TestRecords(t *testing.T) {
	repo, err := store.OpenSample(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	env := lang.NewEnvironment().Set(RecordsBinding, lang.NewRef(repo))
	groups := []lang.Group{Records(), Collections(), Strings()}

	tests := []struct {
		src  string
		want string
	}{
		{"len(findAll(users))", "5"},
		{`pluck(bornBefore(users, "1990-01-01"), "name")`, `["Bob", "Diana", "Eve"]`},
		{`oldest(users)["name"]`, "Diana"},
		{`youngest(users)["birthDate"]`, "1995-03-10"},
		{`countLetters(pluck(findAll(users), "name"))`, "23"},
		{`joinStrings(sort(pluck(findAll(users), "name")), ", ")`, "Alice, Bob, Charlie, Diana, Eve"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := requireValue(t, eval(t, tt.src, env, groups...))
			assert.Equal(t, tt.want, got.Display())
		})
	}
}

func TestRecords_Errors(t *testing.T) {
	env := lang.NewEnvironment().Set(RecordsBinding, lang.NewRef(42))

	assert.Equal(t, lang.KindTypeMismatch, eval(t, "findAll(users)", env, Records()).Kind())
	assert.Equal(t, lang.KindTypeMismatch, eval(t, "findAll(1)", nil, Records()).Kind())

	repo, err := store.OpenSample(t.Context())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	env = lang.NewEnvironment().Set(RecordsBinding, lang.NewRef(repo))
	assert.Equal(t, lang.KindServiceUnavailable, eval(t, "oldest(users)", env, Records()).Kind())

	repo, err = store.OpenSample(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	env = lang.NewEnvironment().Set(RecordsBinding, lang.NewRef(repo))
	assert.Equal(t, lang.KindTypeMismatch, eval(t, `bornBefore(users, "soon")`, env, Records()).Kind())
}
