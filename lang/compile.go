package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/formula/log"
)

// DefaultMaxDepth is the default maximum nesting depth of expressions.
// Users may modify this before compiling to change the default.
var DefaultMaxDepth = 256

// Option configures compilation or evaluation behavior.
type Option func(*options)

type options struct {
	maxDepth int
	logger   log.Logger
}

// WithMaxDepth sets the maximum nesting depth of expressions accepted by the
// parser. A depth of 0 disables the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Program is a compiled formula: the parsed syntax tree together with the
// source text it came from. A Program is immutable and may be evaluated any
// number of times, concurrently, against different environments.
type Program struct {
	source string
	root   *Block
	hash   uint64
}

func newProgram(source string, root *Block) *Program {
	return &Program{
		source: source,
		root:   root,
		hash:   xxh3.HashString(source),
	}
}

// Source returns the formula text the program was compiled from.
func (p *Program) Source() string { return p.source }

// Root returns the top-level statement block.
func (p *Program) Root() *Block { return p.root }

// Hash returns the xxh3 hash of the source text.
func (p *Program) Hash() uint64 { return p.hash }

// Key returns [Program.Hash] encoded in base 36.
func (p *Program) Key() string { return SourceKey(p.source) }

// SourceKey returns the cache key of formula source text.
func SourceKey(source string) string {
	return strconv.FormatUint(xxh3.HashString(source), 36)
}

// Compile parses formula source text into a reusable [Program].
// Failures are [ErrLex] or [ErrParse] errors with source positions.
func Compile(ctx context.Context, source string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	prog, err := Parse(source, opts...)
	if err != nil {
		o.logger.TraceContext(ctx, "compile failed",
			slog.Int("source_bytes", len(source)),
			slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "compile",
		slog.String("key", prog.Key()),
		slog.Int("source_bytes", len(source)),
		slog.Int("statements", len(prog.root.Stmts)))

	return prog, nil
}

// CompileReader reads formula source text from r and compiles it.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	makeOptions(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	return Compile(ctx, string(data), opts...)
}
