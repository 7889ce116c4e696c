package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/profile"
)

// Init writes the current flag values to the configuration file.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

const configIndent = 2

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errors.New("no command line"))
	}

	path := ktx.Model.Vars()[ConfigIdentifier]
	if path == "" {
		return ErrWriteConfig.Wrap(errors.New("no configuration path"))
	}

	fail := ErrWriteConfig.With(slog.String("file", path))

	data, err := yaml.MarshalContext(ctx, configValues(ktx), yaml.Indent(configIndent))
	if err != nil {
		return fail.Wrap(ErrYAMLMarshal.Wrap(err))
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if i.Force {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, mode, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	if err != nil {
		return fail.Wrap(err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()

		return fail.Wrap(err)
	}

	if err := f.Close(); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "wrote configuration",
		slog.String("path", path),
		slog.Int("keys", len(configValues(ktx))))

	return nil
}

// ignoredFlags are flag name prefixes never written to the configuration.
var ignoredFlags = []string{"help", "version", "source", profile.Tag}

// configValues returns the current value of every configurable flag, keyed
// by flag name. Unset flags are omitted.
func configValues(ktx *kong.Context) yaml.MapSlice {
	var out yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(ktx.FlagValue(flag))
		if val != nil {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	slices.SortStableFunc(out, func(a, b yaml.MapItem) int {
		return strings.Compare(fmt.Sprint(a.Key), fmt.Sprint(b.Key))
	})

	return out
}

// flagValue converts a flag value to its configuration file form, or nil if
// it is unset. Durations are written in their string form.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case time.Duration:
		return v.String()

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case map[string]string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int64, float64:
		return v

	default:
		return fmt.Sprint(v)
	}
}
