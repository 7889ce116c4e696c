package engine

import (
	"github.com/ardnew/formula/funcs"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/store"
)

// Option configures an [Engine].
type Option func(*options)

type options struct {
	registry  *lang.Registry
	groups    []lang.Group
	converter funcs.Converter
	records   store.Repository
	constants []binding
	cacheSize int
	maxDepth  int
	logger    log.Logger
}

func makeOptions(opts ...Option) options {
	o := options{
		cacheSize: DefaultCacheSize,
		maxDepth:  lang.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithRegistry uses reg instead of the default libraries. Groups added with
// [WithGroups] are still registered into it.
func WithRegistry(reg *lang.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithGroups registers additional function groups.
func WithGroups(groups ...lang.Group) Option {
	return func(o *options) { o.groups = append(o.groups, groups...) }
}

// WithConverter sets the currency collaborator behind the Currency library.
func WithConverter(conv funcs.Converter) Option {
	return func(o *options) { o.converter = conv }
}

// WithRecords binds repo to the variable [funcs.RecordsBinding] in every
// evaluation.
func WithRecords(repo store.Repository) Option {
	return func(o *options) { o.records = repo }
}

// WithConstant injects a named value into every evaluation.
func WithConstant(name string, value lang.Value) Option {
	return func(o *options) {
		o.constants = append(o.constants, binding{name: name, value: value})
	}
}

// WithCache enables or disables the compile cache. It is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) {
		switch {
		case !enable:
			o.cacheSize = 0
		case o.cacheSize == 0:
			o.cacheSize = DefaultCacheSize
		}
	}
}

// WithCacheSize bounds the number of compiled programs kept by the compile
// cache. A size of zero or less disables it.
func WithCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = max(size, 0) }
}

// WithMaxDepth bounds expression nesting when compiling.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithLogger sets the logger passed to compilation and evaluation.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}
