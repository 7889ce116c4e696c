package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/engine"
)

type kongKey struct{}

// WithContext returns a new context.Context carrying the parsed command
// line. Commands write to its writers and read its variables.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// outputs returns the writers for command results and diagnostics.
func outputs(ctx context.Context) (stdout, stderr io.Writer) {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Stdout, ktx.Stderr
	}

	return os.Stdout, os.Stderr
}

// EngineFunc returns the engine commands evaluate formulas with.
type EngineFunc func(context.Context) (*engine.Engine, error)

type engineKey struct{}

// WithEngine returns a new context.Context carrying the engine constructor
// used by commands that evaluate formulas. The constructor is only called by
// commands that need it.
func WithEngine(ctx context.Context, fn EngineFunc) context.Context {
	return context.WithValue(ctx, engineKey{}, fn)
}

// engineFrom returns the engine stored by WithEngine, or an engine with the
// default function libraries and no collaborators.
func engineFrom(ctx context.Context) (*engine.Engine, error) {
	fn, ok := ctx.Value(engineKey{}).(EngineFunc)
	if !ok || fn == nil {
		return engine.New()
	}

	return fn(ctx)
}
