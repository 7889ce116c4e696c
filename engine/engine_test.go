package engine

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/pkg"
	"github.com/ardnew/formula/store"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e, err := New(opts...)
	require.NoError(t, err)

	return e
}

func TestEngine_Evaluate(t *testing.T) {
	e := newEngine(t)

	env := lang.NewEnvironment().
		Set("price", lang.NewFloat(100)).
		Set("quantity", lang.NewInteger(5))

	tests := []struct {
		src  string
		want string
	}{
		{"price * quantity", "Success: 500.0"},
		{"sqrt(16) + pow(2, 3)", "Success: 12.0"},
		{"discount(1000, 20)", "Success: 800.0"},
		{"2 + 2 * 3", "Success: 8"},
		{"10 / 0", "Error: division by zero: 10 / 0"},
		{"unknownVar + 1", "Error: unknown variable: unknownVar"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(t.Context(), tt.src, env).String())
		})
	}
}

func TestEngine_CompileErrorBecomesResult(t *testing.T) {
	res := newEngine(t).Evaluate(t.Context(), "2 + * 3", nil)

	require.False(t, res.Success())
	assert.Equal(t, lang.KindParse, res.Kind())
	assert.Contains(t, res.Message(), "line 1, column 5")
}

func TestEngine_Constant(t *testing.T) {
	e := newEngine(t, WithConstant("taxRate", lang.NewFloat(20)))

	res := e.Evaluate(t.Context(), "100 * (1 + taxRate / 100)", nil)
	require.True(t, res.Success(), "%v", res.Err())
	assert.True(t, res.Value().Equal(lang.NewFloat(120)))

	env := lang.NewEnvironment().Set("taxRate", lang.NewInteger(10))
	res = e.Evaluate(t.Context(), "taxRate", env)
	assert.True(t, res.Value().Equal(lang.NewInteger(10)), "caller bindings win")
	assert.False(t, lang.NewEnvironment().Has("taxRate"))

	res = newEngine(t).Evaluate(t.Context(), "taxRate", nil)
	assert.Equal(t, lang.KindUnknownVariable, res.Kind())
}

func TestEngine_EnvironmentNotMutated(t *testing.T) {
	e := newEngine(t, WithConstant("k", lang.NewInteger(1)))
	env := lang.NewEnvironment().Set("x", lang.NewInteger(2))

	res := e.Evaluate(t.Context(), "x + k", env)
	require.True(t, res.Success())

	assert.False(t, env.Has("k"))
	assert.Equal(t, []string{"k"}, e.Bindings())
}

func TestEngine_Define(t *testing.T) {
	e := newEngine(t, WithConstant("rate", lang.NewInteger(3)))
	session := lang.NewEnvironment()

	res := e.Define(t.Context(), "def total = 10 * rate", session)
	require.True(t, res.Success(), "%v", res.Err())

	res = e.Define(t.Context(), "total + 1", session)
	require.True(t, res.Success(), "%v", res.Err())
	assert.True(t, res.Value().Equal(lang.NewInteger(31)))
	assert.True(t, session.Has("rate"))

	res = e.Define(t.Context(), "def broken = 1\nbroken / 0", session)
	assert.Equal(t, lang.KindDivisionByZero, res.Kind())
	assert.False(t, session.Has("broken"))
}

func TestEngine_DefineFailureLeavesEnv(t *testing.T) {
	e := newEngine(t, WithConstant("rate", lang.NewInteger(3)))

	for _, src := range []string{
		"def a = 1\n missing",
		"def a = rate\n a / 0",
		"def a = 1 +",
	} {
		session := lang.NewEnvironment().Set("kept", lang.NewInteger(7))

		res := e.Define(t.Context(), src, session)
		require.False(t, res.Success(), src)
		assert.Equal(t, []string{"kept"}, session.Names(), src)
	}
}

func TestEngine_InvalidConstant(t *testing.T) {
	for _, name := range []string{"1 bad", "if", "", "rate-2"} {
		_, err := New(WithConstant(name, lang.NewInteger(1)))
		assert.ErrorIs(t, err, pkg.ErrInvalidConstant, "%q", name)
	}

	_, err := New(WithConstant("rate_2", lang.NewInteger(1)))
	assert.NoError(t, err)
}

func TestEngine_CompileRunMatchesEvaluate(t *testing.T) {
	e := newEngine(t, WithConstant("bonus", lang.NewInteger(5)))
	env := lang.NewEnvironment().Set("salary", lang.NewInteger(100))

	for _, src := range []string{
		"def x = 1\n def x = x + 1\n x",
		"def total = salary + bonus\n if (total > 50) { total * 2 } else { total }",
		"salary / 0",
		"missing + 1",
	} {
		t.Run(src, func(t *testing.T) {
			prog, err := e.Compile(t.Context(), src)
			require.NoError(t, err)

			run := e.Run(t.Context(), prog, env)
			first := e.Evaluate(t.Context(), src, env)
			second := e.Evaluate(t.Context(), src, env)

			assert.Equal(t, run.String(), first.String())
			assert.Equal(t, first.String(), second.String())
			assert.Equal(t, []string{"salary"}, env.Names())
		})
	}

	res := e.Evaluate(t.Context(), "def x = 1\n def x = x + 1\n x", nil)
	assert.Equal(t, "Success: 2", res.String())
}

func TestEngine_Records(t *testing.T) {
	repo, err := store.OpenSample(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	e := newEngine(t, WithRecords(repo))

	res := e.Evaluate(t.Context(), `oldest(users)["name"]`, nil)
	require.True(t, res.Success(), "%v", res.Err())
	assert.Equal(t, "Diana", res.Value().Display())
}

type fixedRate float64

func (r fixedRate) ExchangeRate(context.Context, string, string) (float64, error) {
	return float64(r), nil
}

func (r fixedRate) Convert(_ context.Context, _, _ string, amount float64) (float64, error) {
	return amount * float64(r), nil
}

func (r fixedRate) ConvertToUSD(_ context.Context, _ string, amount float64) (float64, error) {
	return amount * float64(r), nil
}

func TestEngine_Converter(t *testing.T) {
	e := newEngine(t, WithConverter(fixedRate(1.1)))

	res := e.Evaluate(t.Context(), `convertToUSD("EUR", 100)`, nil)
	require.True(t, res.Success(), "%v", res.Err())

	f, _ := res.Value().Float()
	assert.InDelta(t, 110.0, f, 1e-9)

	res = newEngine(t).Evaluate(t.Context(), `convertToUSD("EUR", 100)`, nil)
	assert.Equal(t, lang.KindServiceUnavailable, res.Kind())
}

func TestEngine_Groups(t *testing.T) {
	hello := lang.Group{Name: "custom", Funcs: []lang.Func{{
		Name: "hello",
		Impl: func(context.Context, []lang.Value) (lang.Value, error) {
			return lang.NewString("hi"), nil
		},
	}}}

	e := newEngine(t, WithGroups(hello))
	assert.Equal(t, "Success: hi", e.Evaluate(t.Context(), "hello()", nil).String())
	assert.True(t, e.Registry().Frozen())
	assert.Equal(t, "math", e.Registry().Group("sqrt"))

	only := newEngine(t, WithRegistry(lang.NewRegistry()), WithGroups(hello))
	assert.Equal(t, []string{"hello"}, only.Registry().Names())

	_, err := New(WithGroups(hello, hello))
	assert.ErrorIs(t, err, lang.ErrDuplicateFunction)
}

func TestEngine_CompileCache(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false))

	e := newEngine(t, WithLogger(logger))

	a, err := e.Compile(t.Context(), "1 + 2")
	require.NoError(t, err)

	b, err := e.Compile(t.Context(), "1 + 2")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Contains(t, buf.String(), `"hit":true`)

	_, err1 := e.Compile(t.Context(), "1 +")
	_, err2 := e.Compile(t.Context(), "1 +")
	require.Error(t, err1)
	assert.Equal(t, err1, err2)

	e.Forget()

	c, err := e.Compile(t.Context(), "1 + 2")
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	uncached := newEngine(t, WithCache(false))

	x, _ := uncached.Compile(t.Context(), "1 + 2")
	y, _ := uncached.Compile(t.Context(), "1 + 2")
	assert.NotSame(t, x, y)
}

func TestEngine_CompileCacheSize(t *testing.T) {
	e := newEngine(t, WithCacheSize(2))

	first, err := e.Compile(t.Context(), "1")
	require.NoError(t, err)

	for _, src := range []string{"1", "2"} {
		_, err := e.Compile(t.Context(), src)
		require.NoError(t, err)
	}

	again, _ := e.Compile(t.Context(), "1")
	assert.Same(t, first, again)

	_, err = e.Compile(t.Context(), "3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.cached.Load())

	evicted, _ := e.Compile(t.Context(), "1")
	assert.NotSame(t, first, evicted)

	off := newEngine(t, WithCacheSize(0))
	assert.Nil(t, off.cache)
}

func TestEngine_CompileCacheCollision(t *testing.T) {
	e := newEngine(t)

	other, err := e.Compile(t.Context(), "2 * 2")
	require.NoError(t, err)

	// Pretend "1 + 2" hashes to the slot already holding "2 * 2".
	v, _ := e.cache.Load(lang.SourceKey("2 * 2"))
	e.cache.Store(lang.SourceKey("1 + 2"), v)

	prog, err := e.Compile(t.Context(), "1 + 2")
	require.NoError(t, err)
	assert.NotSame(t, other, prog)
	assert.Equal(t, "1 + 2", prog.Source())
	assert.Equal(t, "Success: 3", e.Run(t.Context(), prog, nil).String())
}

func TestEngine_MaxDepth(t *testing.T) {
	e := newEngine(t, WithMaxDepth(4))

	res := e.Evaluate(t.Context(), strings.Repeat("(", 10)+"1"+strings.Repeat(")", 10), nil)
	assert.Equal(t, lang.KindParse, res.Kind())
}

func TestEngine_Concurrent(t *testing.T) {
	e := newEngine(t, WithConstant("bonus", lang.NewInteger(1000)))

	const src = `
		def total = salary + bonus
		if (total > 50000) { total - percentage(total, 10) } else { total }
	`

	var wg sync.WaitGroup

	for i := range 32 {
		wg.Go(func() {
			salary := int64(i * 5000)
			env := lang.NewEnvironment().Set("salary", lang.NewInteger(salary))

			res := e.Evaluate(t.Context(), src, env)
			if !res.Success() {
				t.Errorf("salary %d: %v", salary, res.Err())

				return
			}

			total := float64(salary + 1000)
			if total > 50000 {
				total -= total * 10 / 100
			}

			if got, _ := res.Value().Float(); got != total {
				t.Errorf("salary %d: got %v, want %v", salary, got, total)
			}
		})
	}

	wg.Wait()
}
