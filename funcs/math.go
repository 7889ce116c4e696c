package funcs

import (
	"context"
	"math"

	"github.com/ardnew/formula/lang"
)

// Math returns the arithmetic and financial function library.
//
// All functions return Float except round, which returns Integer, and abs,
// min and max, which keep Integer operands Integer.
func Math() lang.Group {
	return lang.Group{
		Name: "math",
		Funcs: []lang.Func{
			unary("square(x)", "x²", func(x float64) float64 { return x * x }),
			unary("cube(x)", "x³", func(x float64) float64 { return x * x * x }),
			binary("percentage(value, percent)", "value·percent/100", percentage),
			binary("discount(price, percent)", "price less percentage(price, percent)",
				func(price, pct float64) float64 { return price - percentage(price, pct) }),
			define("compound(principal, rate, years)", "principal·(1+rate/100)^years", compound),

			unary("sqrt(x)", "square root", math.Sqrt),
			unary("cbrt(x)", "cube root", math.Cbrt),
			binary("pow(x, y)", "x raised to y", math.Pow),
			binary("hypot(x, y)", "√(x²+y²)", math.Hypot),
			unary("exp(x)", "eˣ", math.Exp),
			unary("log(x)", "natural logarithm", math.Log),
			unary("log10(x)", "base-10 logarithm", math.Log10),

			unary("sin(x)", "sine (radians)", math.Sin),
			unary("cos(x)", "cosine (radians)", math.Cos),
			unary("tan(x)", "tangent (radians)", math.Tan),
			unary("asin(x)", "arc sine", math.Asin),
			unary("acos(x)", "arc cosine", math.Acos),
			unary("atan(x)", "arc tangent", math.Atan),
			binary("atan2(y, x)", "arc tangent of y/x", math.Atan2),
			unary("toRadians(degrees)", "degrees to radians", func(x float64) float64 { return x * math.Pi / 180 }),
			unary("toDegrees(radians)", "radians to degrees", func(x float64) float64 { return x * 180 / math.Pi }),

			unary("floor(x)", "largest integer ≤ x", math.Floor),
			unary("ceil(x)", "smallest integer ≥ x", math.Ceil),
			unary("signum(x)", "-1, 0 or 1", signum),
			define("round(x)", "nearest integer, halves up", round),
			define("abs(x)", "absolute value", abs),
			define("min(a, b)", "smaller of two numbers", extremum("min", -1)),
			define("max(a, b)", "larger of two numbers", extremum("max", 1)),

			constant("pi", "π", math.Pi),
			constant("e", "Euler's number", math.E),
		},
	}
}

func percentage(value, pct float64) float64 { return value * pct / 100 }

func compound(_ context.Context, args []lang.Value) (lang.Value, error) {
	var in [3]float64

	for i := range in {
		x, err := number("compound", args, i)
		if err != nil {
			return lang.Value{}, err
		}

		in[i] = x
	}

	principal, rate, years := in[0], in[1], in[2]

	return lang.NewFloat(principal * math.Pow(1+rate/100, years)), nil
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x // preserves NaN and signed zero
	}
}

func round(_ context.Context, args []lang.Value) (lang.Value, error) {
	if n, ok := args[0].Int(); ok {
		return lang.NewInteger(n), nil
	}

	x, err := number("round", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	r := math.Floor(x + 0.5)
	if math.IsNaN(r) || r >= math.MaxInt64 || r < math.MinInt64 {
		return lang.Value{}, lang.ErrTypeMismatch.Detailf("round: %v has no Integer value", x)
	}

	return lang.NewInteger(int64(r)), nil
}

func abs(_ context.Context, args []lang.Value) (lang.Value, error) {
	if n, ok := args[0].Int(); ok && n != math.MinInt64 {
		if n < 0 {
			n = -n
		}

		return lang.NewInteger(n), nil
	}

	x, err := number("abs", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.NewFloat(math.Abs(x)), nil
}

// extremum returns an implementation choosing the left operand when its
// comparison with the right one has the given sign.
func extremum(name string, sign int) lang.Impl {
	return func(_ context.Context, args []lang.Value) (lang.Value, error) {
		a, err := number(name, args, 0)
		if err != nil {
			return lang.Value{}, err
		}

		b, err := number(name, args, 1)
		if err != nil {
			return lang.Value{}, err
		}

		pick := args[1]
		if (sign < 0 && a <= b) || (sign > 0 && a >= b) {
			pick = args[0]
		}

		if pick.Type == lang.TypeInteger && args[0].Type == args[1].Type {
			return pick, nil
		}

		f, _ := pick.Float()

		return lang.NewFloat(f), nil
	}
}
