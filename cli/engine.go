package cli

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/cli/cmd"
	"github.com/ardnew/formula/currency"
	"github.com/ardnew/formula/engine"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/pkg"
	"github.com/ardnew/formula/store"
)

type engineConfig struct {
	RatesURL     string            `default:"${ratesURL}"     help:"Exchange-rate provider root URL"                          name:"rates-url"`
	RatesTimeout time.Duration     `default:"${ratesTimeout}" help:"Exchange-rate request timeout"                            name:"rates-timeout"`
	RecordsDB    string            `default:""                help:"SQLite user records database (sample data when empty)" name:"records-db"    type:"path"`
	Constant     map[string]string `help:"Numeric constant available to every formula"                                        name:"constant"      placeholder:"NAME=VALUE" short:"k"`
	MaxDepth     int               `default:"${maxDepth}"     help:"Maximum expression nesting depth"                         name:"max-depth"`
	Cache        bool              `default:"true"            help:"Cache compiled formulas"                                  name:"cache"         negatable:""`
}

func (*engineConfig) vars() kong.Vars {
	return kong.Vars{
		"ratesURL":     currency.DefaultBaseURL,
		"ratesTimeout": currency.DefaultTimeout.String(),
		"maxDepth":     strconv.Itoa(lang.DefaultMaxDepth),
	}
}

func (*engineConfig) group() kong.Group {
	return kong.Group{Key: "engine", Title: "Engine options"}
}

// constants validates the --constant values. Each must be a numeric literal
// bound to an identifier.
func (f *engineConfig) constants() ([]engine.Option, error) {
	opts := make([]engine.Option, 0, len(f.Constant))

	for _, name := range slices.Sorted(maps.Keys(f.Constant)) {
		raw := f.Constant[name]

		if !lang.IsIdentifier(name) {
			return nil, pkg.ErrInvalidConstant.Wrapf("%q is not an identifier", name)
		}

		v := cmd.ParseValue(raw)
		if !v.IsNumeric() {
			return nil, pkg.ErrInvalidConstant.Wrapf("%s=%q is not numeric", name, raw)
		}

		opts = append(opts, engine.WithConstant(name, v))
	}

	return opts, nil
}

// open builds the engine and the records store behind it. The returned
// closer releases the store.
func (f *engineConfig) open(ctx context.Context) (*engine.Engine, io.Closer, error) {
	consts, err := f.constants()
	if err != nil {
		return nil, nil, err
	}

	logger := log.Default()

	var db *store.SQLite

	if f.RecordsDB == "" {
		db, err = store.OpenSample(ctx, store.WithLogger(logger.Named("store")))
	} else {
		db, err = store.Open(ctx, f.RecordsDB, store.WithLogger(logger.Named("store")))
	}

	if err != nil {
		return nil, nil, err
	}

	conv := currency.New(
		currency.WithBaseURL(f.RatesURL),
		currency.WithTimeout(f.RatesTimeout),
		currency.WithLogger(logger.Named("currency")),
	)

	opts := append([]engine.Option{
		engine.WithConverter(conv),
		engine.WithRecords(db),
		engine.WithMaxDepth(f.MaxDepth),
		engine.WithCache(f.Cache),
		engine.WithLogger(logger.Named("engine")),
	}, consts...)

	eng, err := engine.New(opts...)
	if err != nil {
		_ = db.Close()

		return nil, nil, err
	}

	log.DebugContext(ctx, "engine ready",
		slog.String("rates", f.RatesURL),
		slog.String("records", f.RecordsDB),
		slog.Any("constants", slices.Sorted(maps.Keys(f.Constant))),
		slog.Int("functions", len(eng.Registry().Names())))

	return eng, db, nil
}
