package lang

import (
	"iter"
	"log/slog"
)

// Environment is an ordered, case-sensitive mapping of variable names to
// values supplied by the caller of an evaluation.
//
// An Environment is not safe for concurrent mutation. Evaluation only reads
// it, so a fully built Environment may be shared by concurrent evaluations.
type Environment struct {
	names  []string
	values map[string]Value
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// EnvironmentFrom builds an Environment from Go values. Names are ordered
// lexically since Go maps are unordered.
func EnvironmentFrom(vars map[string]any) (*Environment, error) {
	env := NewEnvironment()

	for _, name := range sortedKeys(vars) {
		if err := env.SetAny(name, vars[name]); err != nil {
			return nil, err
		}
	}

	return env, nil
}

// Set binds name to v, replacing any existing binding in place. It returns
// the receiver for chaining.
func (e *Environment) Set(name string, v Value) *Environment {
	if e.values == nil {
		e.values = make(map[string]Value)
	}

	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}

	e.values[name] = v

	return e
}

// SetAny converts x with [ValueOf] and binds it to name.
func (e *Environment) SetAny(name string, x any) error {
	v, err := ValueOf(x)
	if err != nil {
		return ErrTypeMismatch.Wrap(err).With(slog.String("variable", name))
	}

	e.Set(name, v)

	return nil
}

// Get returns the value bound to name.
func (e *Environment) Get(name string) (Value, bool) {
	if e == nil {
		return Value{}, false
	}

	v, ok := e.values[name]

	return v, ok
}

// Has reports whether name is bound.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)

	return ok
}

// Names returns the bound names in insertion order.
func (e *Environment) Names() []string {
	if e == nil {
		return nil
	}

	return append([]string(nil), e.names...)
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	if e == nil {
		return 0
	}

	return len(e.names)
}

// All returns an iterator over all bindings in insertion order.
func (e *Environment) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if e == nil {
			return
		}

		for _, name := range e.names {
			if !yield(name, e.values[name]) {
				return
			}
		}
	}
}

// Clone returns an independent copy of e. A nil receiver yields an empty
// Environment.
func (e *Environment) Clone() *Environment {
	c := NewEnvironment()
	if e == nil {
		return c
	}

	c.names = append(make([]string, 0, len(e.names)), e.names...)
	for k, v := range e.values {
		c.values[k] = v
	}

	return c
}

// scope is one link in the chain of formula-local bindings introduced by
// def/let statements. Lookups walk the chain before consulting the
// Environment.
type scope struct {
	name   string
	value  Value
	parent *scope
}

func (s *scope) bind(name string, v Value) *scope {
	return &scope{name: name, value: v, parent: s}
}

func (s *scope) lookup(name string) (Value, bool) {
	for ; s != nil; s = s.parent {
		if s.name == name {
			return s.value, true
		}
	}

	return Value{}, false
}
