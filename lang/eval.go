package lang

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Evaluate runs prog against env, resolving function calls through reg.
//
// Evaluate never panics and never returns a Go error: every failure,
// including a panic inside a native function, is reported as a failed
// [Result]. The Environment, the Registry and the Program are only read.
func Evaluate(
	ctx context.Context,
	prog *Program,
	env *Environment,
	reg *Registry,
	opts ...Option,
) Result {
	res, _ := evaluate(ctx, prog, env, reg, opts...)

	return res
}

// EvaluateInto is like [Evaluate] but, when evaluation succeeds, also copies
// the top-level def/let bindings of prog into env, so that later programs
// evaluated against env can refer to them. A nil env is not written.
func EvaluateInto(
	ctx context.Context,
	prog *Program,
	env *Environment,
	reg *Registry,
	opts ...Option,
) Result {
	res, sc := evaluate(ctx, prog, env, reg, opts...)
	if !res.Success() || env == nil {
		return res
	}

	var chain []*scope
	for ; sc != nil; sc = sc.parent {
		chain = append(chain, sc)
	}

	for _, s := range slices.Backward(chain) {
		env.Set(s.name, s.value)
	}

	return res
}

func evaluate(
	ctx context.Context,
	prog *Program,
	env *Environment,
	reg *Registry,
	opts ...Option,
) (res Result, top *scope) {
	o := makeOptions(opts...)

	if prog == nil || prog.root == nil {
		return Fail(ErrInternal.Detailf("no program to evaluate")), nil
	}

	ev := &evalContext{
		ctx: ctx,
		env: env,
		reg: reg,
	}

	defer func() {
		if r := recover(); r != nil {
			res, top = Fail(ErrInternal.Detailf("%v", r).
				With(slog.String("key", prog.Key()))), nil
		}

		o.logger.TraceContext(ctx, "evaluate",
			slog.String("key", prog.Key()),
			slog.Any("result", res))
	}()

	v, sc, err := ev.evalStatements(prog.root, nil)
	if err != nil {
		return Fail(err), nil
	}

	return Ok(v), sc
}

// evalContext holds the state of a single evaluation.
type evalContext struct {
	ctx context.Context
	env *Environment
	reg *Registry
}

// fail annotates err with the position of the node that raised it.
func (ev *evalContext) fail(n Node, err *Error) error {
	return err.With(slog.String("position", n.Pos().String()))
}

func (ev *evalContext) eval(n Node, sc *scope) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *VariableRef:
		return ev.evalVariable(n, sc)

	case *UnaryOp:
		return ev.evalUnary(n, sc)

	case *BinaryOp:
		return ev.evalBinary(n, sc)

	case *Call:
		return ev.evalCall(n, sc)

	case *Index:
		return ev.evalIndex(n, sc)

	case *If:
		return ev.evalIf(n, sc)

	case *Block:
		return ev.evalBlock(n, sc)

	case *ListLiteral:
		elems := make([]Value, len(n.Elems))

		for i, e := range n.Elems {
			v, err := ev.eval(e, sc)
			if err != nil {
				return Value{}, err
			}

			elems[i] = v
		}

		return NewList(elems...), nil

	case *MapLiteral:
		keys := make([]string, 0, len(n.Entries))
		fields := make(map[string]Value, len(n.Entries))

		for _, e := range n.Entries {
			v, err := ev.eval(e.Value, sc)
			if err != nil {
				return Value{}, err
			}

			if _, dup := fields[e.Key]; !dup {
				keys = append(keys, e.Key)
			}

			fields[e.Key] = v
		}

		return NewMap(keys, fields), nil

	case *Let:
		// A Let outside of a statement list binds nothing.
		return ev.eval(n.Expr, sc)

	default:
		return Value{}, ErrInternal.Detailf("unhandled node %T", n)
	}
}

// evalBlock evaluates statements in order. Each def/let opens a child scope
// that is visible to the remaining statements of this block only.
func (ev *evalContext) evalBlock(b *Block, sc *scope) (Value, error) {
	v, _, err := ev.evalStatements(b, sc)

	return v, err
}

// evalStatements is evalBlock that also returns the innermost scope.
func (ev *evalContext) evalStatements(b *Block, sc *scope) (Value, *scope, error) {
	last := Unit()

	for _, stmt := range b.Stmts {
		if let, ok := stmt.(*Let); ok {
			v, err := ev.eval(let.Expr, sc)
			if err != nil {
				return Value{}, nil, err
			}

			sc = sc.bind(let.Name, v)
			last = v

			continue
		}

		v, err := ev.eval(stmt, sc)
		if err != nil {
			return Value{}, nil, err
		}

		last = v
	}

	return last, sc, nil
}

func (ev *evalContext) evalVariable(n *VariableRef, sc *scope) (Value, error) {
	if v, ok := sc.lookup(n.Name); ok {
		return v, nil
	}

	if v, ok := ev.env.Get(n.Name); ok {
		return v, nil
	}

	return Value{}, ev.fail(n, ErrUnknownVariable.Detailf("%s", n.Name))
}

func (ev *evalContext) evalUnary(n *UnaryOp, sc *scope) (Value, error) {
	v, err := ev.eval(n.Operand, sc)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case "-":
		switch v.Type {
		case TypeInteger:
			if v.int == math.MinInt64 {
				return Value{}, ev.fail(n, ErrIntegerOverflow.Detailf("-(%d)", v.int))
			}

			return NewInteger(-v.int), nil

		case TypeFloat:
			return NewFloat(-v.num), nil
		}

	case "!":
		if b, ok := v.Bool(); ok {
			return NewBoolean(!b), nil
		}
	}

	return Value{}, ev.fail(n, ErrTypeMismatch.Detailf(
		"operator %s cannot be applied to %s", n.Op, v.Type))
}

func (ev *evalContext) evalBinary(n *BinaryOp, sc *scope) (Value, error) {
	left, err := ev.eval(n.Left, sc)
	if err != nil {
		return Value{}, err
	}

	// Logical operators evaluate their right operand only when needed.
	if n.Op == "&&" || n.Op == "||" {
		return ev.evalLogical(n, left, sc)
	}

	right, err := ev.eval(n.Right, sc)
	if err != nil {
		return Value{}, err
	}

	var v Value

	switch n.Op {
	case "==":
		return NewBoolean(left.Equal(right)), nil

	case "!=":
		return NewBoolean(!left.Equal(right)), nil

	case "<", "<=", ">", ">=":
		v, err = compare(n.Op, left, right)

	case "+":
		switch {
		case left.Type == TypeString:
			return NewString(left.str + right.Display()), nil

		case left.Type == TypeList && right.Type == TypeList:
			elems := make([]Value, 0, len(left.list)+len(right.list))

			return NewList(append(append(elems, left.list...), right.list...)...), nil
		}

		v, err = arithmetic(n.Op, left, right)

	default:
		v, err = arithmetic(n.Op, left, right)
	}

	if err != nil {
		return Value{}, ev.fail(n, WrapError(err))
	}

	return v, nil
}

func (ev *evalContext) evalLogical(n *BinaryOp, left Value, sc *scope) (Value, error) {
	l, ok := left.Bool()
	if !ok {
		return Value{}, ev.fail(n, ErrTypeMismatch.Detailf(
			"operator %s requires Boolean operands, got %s", n.Op, left.Type))
	}

	if (n.Op == "&&" && !l) || (n.Op == "||" && l) {
		return NewBoolean(l), nil
	}

	right, err := ev.eval(n.Right, sc)
	if err != nil {
		return Value{}, err
	}

	r, ok := right.Bool()
	if !ok {
		return Value{}, ev.fail(n, ErrTypeMismatch.Detailf(
			"operator %s requires Boolean operands, got %s", n.Op, right.Type))
	}

	return NewBoolean(r), nil
}

// arithmetic applies a numeric operator. Integer operands stay Integer
// except under "/", which always yields a Float. A zero divisor is an error
// for both "/" and "%".
func arithmetic(op string, l, r Value) (Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return Value{}, ErrTypeMismatch.Detailf(
			"operator %s cannot be applied to %s and %s", op, l.Type, r.Type)
	}

	if l.Type == TypeInteger && r.Type == TypeInteger && op != "/" {
		a, b := l.int, r.int

		switch op {
		case "+":
			if c := a + b; (c > a) == (b > 0) {
				return NewInteger(c), nil
			}

			return Value{}, ErrIntegerOverflow.Detailf("%d + %d", a, b)

		case "-":
			if c := a - b; (c < a) == (b > 0) {
				return NewInteger(c), nil
			}

			return Value{}, ErrIntegerOverflow.Detailf("%d - %d", a, b)

		case "*":
			if c, ok := mul64(a, b); ok {
				return NewInteger(c), nil
			}

			return Value{}, ErrIntegerOverflow.Detailf("%d * %d", a, b)

		case "%":
			if b == 0 {
				return Value{}, ErrDivisionByZero.Detailf("%d %% 0", a)
			}

			return NewInteger(a % b), nil
		}
	}

	a, _ := l.Float()
	b, _ := r.Float()

	switch op {
	case "+":
		return NewFloat(a + b), nil

	case "-":
		return NewFloat(a - b), nil

	case "*":
		return NewFloat(a * b), nil

	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero.Detailf("%s / %s", l, r)
		}

		return NewFloat(a / b), nil

	case "%":
		if b == 0 {
			return Value{}, ErrDivisionByZero.Detailf("%s %% %s", l, r)
		}

		return NewFloat(math.Mod(a, b)), nil

	default:
		return Value{}, ErrInternal.Detailf("unknown operator %s", op)
	}
}

// mul64 returns a*b and whether the product fits in an int64.
func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}

	c := a * b

	return c, c/b == a
}

// compare applies an ordering operator to two numbers or two strings.
func compare(op string, l, r Value) (Value, error) {
	var c int

	switch {
	case l.Type == TypeInteger && r.Type == TypeInteger:
		c = cmpOrdered(l.int, r.int)

	case l.IsNumeric() && r.IsNumeric():
		a, _ := l.Float()
		b, _ := r.Float()
		c = cmpOrdered(a, b)

	case l.Type == TypeString && r.Type == TypeString:
		c = strings.Compare(l.str, r.str)

	default:
		return Value{}, ErrTypeMismatch.Detailf(
			"operator %s cannot compare %s and %s", op, l.Type, r.Type)
	}

	switch op {
	case "<":
		return NewBoolean(c < 0), nil

	case "<=":
		return NewBoolean(c <= 0), nil

	case ">":
		return NewBoolean(c > 0), nil

	default:
		return NewBoolean(c >= 0), nil
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1

	case a > b:
		return 1

	default:
		return 0
	}
}

func (ev *evalContext) evalCall(n *Call, sc *scope) (Value, error) {
	fn, ok := ev.reg.Resolve(n.Name)
	if !ok {
		return Value{}, ev.fail(n, ErrUnknownFunction.Detailf("%s", n.Name))
	}

	if fn.Arity != Variadic && fn.Arity != len(n.Args) {
		return Value{}, ev.fail(n, ErrArityMismatch.Detailf(
			"%s expects %d, got %d", n.Name, fn.Arity, len(n.Args)))
	}

	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		v, err := ev.eval(a, sc)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	v, err := fn.Impl(ev.ctx, args)
	if err != nil {
		ee := WrapError(err)
		if ee.Kind() == KindInternal && ee.msg == "" {
			ee = ErrInternal.Detailf("%s", n.Name).Wrap(err)
		}

		return Value{}, ev.fail(n, ee.With(slog.String("function", n.Name)))
	}

	return v, nil
}

func (ev *evalContext) evalIndex(n *Index, sc *scope) (Value, error) {
	target, err := ev.eval(n.Target, sc)
	if err != nil {
		return Value{}, err
	}

	key, err := ev.eval(n.Key, sc)
	if err != nil {
		return Value{}, err
	}

	switch {
	case target.Type == TypeList && key.Type == TypeInteger:
		if key.int < 0 || key.int >= int64(len(target.list)) {
			return Value{}, ev.fail(n, ErrIndexOutOfRange.Detailf(
				"index %d, length %d", key.int, len(target.list)))
		}

		return target.list[key.int], nil

	case target.Type == TypeString && key.Type == TypeInteger:
		runes := []rune(target.str)
		if key.int < 0 || key.int >= int64(len(runes)) {
			return Value{}, ev.fail(n, ErrIndexOutOfRange.Detailf(
				"index %d, length %d", key.int, len(runes)))
		}

		return NewString(string(runes[key.int])), nil

	case target.Type == TypeMap && key.Type == TypeString:
		v, _ := target.Field(key.str)

		return v, nil

	default:
		return Value{}, ev.fail(n, ErrTypeMismatch.Detailf(
			"cannot index %s with %s", target.Type, key.Type))
	}
}

func (ev *evalContext) evalIf(n *If, sc *scope) (Value, error) {
	cond, err := ev.eval(n.Cond, sc)
	if err != nil {
		return Value{}, err
	}

	b, ok := cond.Bool()
	if !ok {
		return Value{}, ev.fail(n, ErrTypeMismatch.Detailf(
			"if condition must be Boolean, got %s", cond.Type))
	}

	if b {
		return ev.evalBlock(n.Then, sc)
	}

	if n.Else == nil {
		return Unit(), nil
	}

	return ev.eval(n.Else, sc)
}
