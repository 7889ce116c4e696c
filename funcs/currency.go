package funcs

import (
	"context"
	"errors"

	"github.com/ardnew/formula/lang"
)

// Converter converts amounts between currencies identified by ISO 4217
// codes.
//
// Implementations should report a missing rate with [lang.ErrUnknownCurrency]
// and any other failure with [lang.ErrServiceUnavailable]. Other errors are
// treated as the service being unavailable.
type Converter interface {
	Convert(ctx context.Context, from, to string, amount float64) (float64, error)
	ConvertToUSD(ctx context.Context, from string, amount float64) (float64, error)
	ExchangeRate(ctx context.Context, from, to string) (float64, error)
}

// Currency returns the currency conversion library backed by conv.
// A nil conv yields functions that fail with [lang.ErrServiceUnavailable].
func Currency(conv Converter) lang.Group {
	c := currencyFuncs{conv: conv}

	return lang.Group{
		Name: "currency",
		Funcs: []lang.Func{
			define("convertCurrency(from, to, amount)", "convert amount from one currency to another", c.convert),
			define("convertToUSD(from, amount)", "convert amount to US dollars", c.convertToUSD),
			define("exchangeRate(from, to)", "units of the target per unit of the source", c.exchangeRate),
		},
	}
}

var errNoConverter = errors.New("no currency converter configured")

type currencyFuncs struct{ conv Converter }

func (c currencyFuncs) convert(ctx context.Context, args []lang.Value) (lang.Value, error) {
	from, to, err := codes("convertCurrency", args)
	if err != nil {
		return lang.Value{}, err
	}

	amount, err := number("convertCurrency", args, 2)
	if err != nil {
		return lang.Value{}, err
	}

	if c.conv == nil {
		return lang.Value{}, lang.ErrServiceUnavailable.Wrap(errNoConverter)
	}

	return converted(c.conv.Convert(ctx, from, to, amount))
}

func (c currencyFuncs) convertToUSD(ctx context.Context, args []lang.Value) (lang.Value, error) {
	from, err := text("convertToUSD", args, 0)
	if err != nil {
		return lang.Value{}, err
	}

	amount, err := number("convertToUSD", args, 1)
	if err != nil {
		return lang.Value{}, err
	}

	if c.conv == nil {
		return lang.Value{}, lang.ErrServiceUnavailable.Wrap(errNoConverter)
	}

	return converted(c.conv.ConvertToUSD(ctx, from, amount))
}

func (c currencyFuncs) exchangeRate(ctx context.Context, args []lang.Value) (lang.Value, error) {
	from, to, err := codes("exchangeRate", args)
	if err != nil {
		return lang.Value{}, err
	}

	if c.conv == nil {
		return lang.Value{}, lang.ErrServiceUnavailable.Wrap(errNoConverter)
	}

	return converted(c.conv.ExchangeRate(ctx, from, to))
}

func codes(name string, args []lang.Value) (string, string, error) {
	from, err := text(name, args, 0)
	if err != nil {
		return "", "", err
	}

	to, err := text(name, args, 1)
	if err != nil {
		return "", "", err
	}

	return from, to, nil
}

func converted(x float64, err error) (lang.Value, error) {
	if err == nil {
		return lang.NewFloat(x), nil
	}

	switch lang.KindOf(err) {
	case lang.KindUnknownCurrency, lang.KindServiceUnavailable:
		return lang.Value{}, err

	default:
		return lang.Value{}, lang.ErrServiceUnavailable.Wrap(err)
	}
}
