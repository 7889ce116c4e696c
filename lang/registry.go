package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Variadic is the [Func.Arity] of functions accepting any argument count.
const Variadic = -1

// Impl is the native implementation of a registered function. Arguments
// have already been evaluated left to right.
type Impl func(ctx context.Context, args []Value) (Value, error)

// Func describes a named function callable from formulas.
type Func struct {
	Name   string
	Arity  int      // Fixed argument count, or Variadic.
	Params []string // Optional argument names, for help and completion.
	Impl   Impl
	Doc    string
}

// Signature renders f as name(params...). Without parameter names it falls
// back to the arity.
func (f Func) Signature() string {
	switch {
	case len(f.Params) > 0:
		return f.Name + "(" + strings.Join(f.Params, ", ") + ")"

	case f.Arity == Variadic:
		return f.Name + "(...)"

	default:
		return f.Name + "(" + strings.Repeat("_, ", max(f.Arity-1, 0)) +
			strings.Repeat("_", min(f.Arity, 1)) + ")"
	}
}

// Group is a named collection of functions registered together.
type Group struct {
	Name  string
	Funcs []Func
}

// Registry maps function names to implementations.
//
// A Registry is mutable until [Registry.Freeze] is called; afterwards it is
// read-only and safe for concurrent use by any number of evaluations.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	groups map[string]string // function name -> group name
	frozen atomic.Bool
}

// NewRegistry creates a registry populated with the given groups. It panics
// if two groups register the same function name, since that is a
// programming error in the group definitions.
func NewRegistry(groups ...Group) *Registry {
	r := &Registry{
		funcs:  make(map[string]Func),
		groups: make(map[string]string),
	}

	for _, g := range groups {
		if err := r.RegisterGroup(g); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds f to the registry.
func (r *Registry) Register(f Func) error {
	return r.register("", f)
}

// RegisterGroup adds all functions of g to the registry.
func (r *Registry) RegisterGroup(g Group) error {
	for _, f := range g.Funcs {
		if err := r.register(g.Name, f); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) register(group string, f Func) error {
	if f.Impl == nil || f.Name == "" {
		return ErrInternal.Detailf("function %q has no implementation", f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrRegistryFrozen.With(slog.String("function", f.Name))
	}

	if _, ok := r.funcs[f.Name]; ok {
		return ErrDuplicateFunction.Detailf("%s", f.Name).
			With(slog.String("group", group))
	}

	r.funcs[f.Name] = f
	r.groups[f.Name] = group

	return nil
}

// Freeze makes the registry immutable. It returns the receiver for chaining.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen.Store(true)

	return r
}

// Frozen reports whether [Registry.Freeze] has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Resolve looks up the function registered under name.
func (r *Registry) Resolve(name string) (Func, bool) {
	if r == nil {
		return Func{}, false
	}

	// A frozen registry is never written again, so the lock is skipped on the
	// evaluation path.
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	f, ok := r.funcs[name]

	return f, ok
}

// Group returns the name of the group that registered the function name.
func (r *Registry) Group(name string) string {
	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	return r.groups[name]
}

// Names returns the registered function names in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	if !r.frozen.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	names := sortedKeys(r.funcs)
	if names == nil {
		return []string{}
	}

	return slices.Clip(names)
}
