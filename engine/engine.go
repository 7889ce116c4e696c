// Package engine wires the formula language to its function libraries and
// collaborators.
//
// An [Engine] owns a frozen [lang.Registry], the values injected into every
// evaluation, and a cache of compiled programs:
//
//	eng, err := engine.New(
//		engine.WithConverter(currency.New()),
//		engine.WithConstant("taxRate", lang.NewFloat(20)),
//	)
//	res := eng.Evaluate(ctx, "price * (1 + taxRate / 100)", env)
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ardnew/formula/funcs"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/pkg"
)

// DefaultCacheSize is the number of compiled programs kept before the
// compile cache is emptied.
const DefaultCacheSize = 4096

// Engine compiles and evaluates formulas. It is safe for concurrent use.
type Engine struct {
	reg      *lang.Registry
	inject   []binding
	cache    *sync.Map // lang.SourceKey -> *entry
	cached   atomic.Int64
	limit    int64
	langOpts []lang.Option
	logger   log.Logger
}

type binding struct {
	name  string
	value lang.Value
}

// entry is a compile cache slot. The first caller compiles; concurrent
// callers for the same source wait on once.
type entry struct {
	text string
	once sync.Once
	prog *lang.Program
	err  error
}

// New creates an Engine. Without [WithRegistry] the registry holds the Math,
// Strings, Collections, Currency and Records libraries plus any
// [WithGroups]. The registry is frozen before New returns. A constant whose
// name is not an identifier fails with [pkg.ErrInvalidConstant].
func New(opts ...Option) (*Engine, error) {
	o := makeOptions(opts...)

	for _, c := range o.constants {
		if !lang.IsIdentifier(c.name) {
			return nil, pkg.ErrInvalidConstant.Wrapf("%q is not an identifier", c.name)
		}
	}

	reg := o.registry
	if reg == nil {
		reg = lang.NewRegistry()
		o.groups = append(defaultGroups(o.converter), o.groups...)
	}

	for _, g := range o.groups {
		if err := reg.RegisterGroup(g); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		reg:    reg.Freeze(),
		inject: o.constants,
		logger: o.logger,
		langOpts: []lang.Option{
			lang.WithLogger(o.logger),
			lang.WithMaxDepth(o.maxDepth),
		},
	}

	if o.records != nil {
		e.inject = append(e.inject, binding{funcs.RecordsBinding, lang.NewRef(o.records)})
	}

	if o.cacheSize > 0 {
		e.cache = new(sync.Map)
		e.limit = int64(o.cacheSize)
	}

	return e, nil
}

func defaultGroups(conv funcs.Converter) []lang.Group {
	return []lang.Group{
		funcs.Math(),
		funcs.Strings(),
		funcs.Collections(),
		funcs.Currency(conv),
		funcs.Records(),
	}
}

// Registry returns the engine's frozen function registry.
func (e *Engine) Registry() *lang.Registry { return e.reg }

// Compile parses text, reusing a previous result for identical text when the
// cache is enabled. The cache is emptied once it holds more programs than
// its size.
func (e *Engine) Compile(ctx context.Context, text string) (*lang.Program, error) {
	if e.cache == nil {
		return lang.Compile(ctx, text, e.langOpts...)
	}

	key := lang.SourceKey(text)

	v, loaded := e.cache.LoadOrStore(key, &entry{text: text})
	ent, _ := v.(*entry)

	e.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("hit", loaded))

	switch {
	case loaded && ent.text != text:
		e.logger.DebugContext(ctx, "cache collision", slog.String("key", key))

		return lang.Compile(ctx, text, e.langOpts...)

	case !loaded && e.cached.Add(1) > e.limit:
		e.Forget()
		e.cache.Store(key, ent)
		e.cached.Store(1)
	}

	ent.once.Do(func() {
		ent.prog, ent.err = lang.Compile(ctx, text, e.langOpts...)
	})

	return ent.prog, ent.err
}

// Run evaluates a compiled program against env. The injected bindings are
// added to a copy of env; names env already binds take precedence.
func (e *Engine) Run(ctx context.Context, prog *lang.Program, env *lang.Environment) lang.Result {
	return lang.Evaluate(ctx, prog, e.Environment(env), e.reg, e.langOpts...)
}

// Evaluate compiles and runs text. Compile failures are returned as a failed
// Result.
func (e *Engine) Evaluate(ctx context.Context, text string, env *lang.Environment) lang.Result {
	prog, err := e.Compile(ctx, text)
	if err != nil {
		return lang.Fail(err)
	}

	return e.Run(ctx, prog, env)
}

// Define evaluates text against env and, on success, keeps its top-level def
// and let bindings in env for later evaluations. Unlike [Engine.Evaluate],
// Define writes to env, including any injected binding env lacks. A failed
// evaluation leaves env unchanged.
func (e *Engine) Define(ctx context.Context, text string, env *lang.Environment) lang.Result {
	if env == nil {
		return e.Evaluate(ctx, text, nil)
	}

	prog, err := e.Compile(ctx, text)
	if err != nil {
		return lang.Fail(err)
	}

	work := e.Environment(env)
	if work == env {
		work = env.Clone()
	}

	res := lang.EvaluateInto(ctx, prog, work, e.reg, e.langOpts...)
	if res.Success() {
		for name, v := range work.All() {
			env.Set(name, v)
		}
	}

	return res
}

// Environment returns a copy of env carrying the engine's injected bindings.
// env itself is never modified.
func (e *Engine) Environment(env *lang.Environment) *lang.Environment {
	if len(e.inject) == 0 {
		return env
	}

	out := env.Clone()

	for _, b := range e.inject {
		if !out.Has(b.name) {
			out.Set(b.name, b.value)
		}
	}

	return out
}

// Bindings lists the names injected into every evaluation.
func (e *Engine) Bindings() []string {
	names := make([]string, len(e.inject))
	for i, b := range e.inject {
		names[i] = b.name
	}

	return names
}

// Forget empties the compile cache.
func (e *Engine) Forget() {
	if e.cache != nil {
		e.cache.Clear()
		e.cached.Store(0)
	}
}
