package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/log"
)

// resolveYAML is a [kong.ConfigurationLoader] for YAML config files:
//
//	kong.Configuration(resolveYAML, "/path/to/config.yaml")
//
// Keys are flag names, spelled with hyphens or underscores. Flags of an
// embedded group may also be nested under the group prefix:
//
//	log-level: debug
//	rates_timeout: 5s
//	engine:
//	  max-depth: 64
//	constant:
//	  taxRate: 20
//
// A file that does not parse is ignored with a warning so that a broken
// config never prevents running init --force. Command-line flags override
// config file values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring config file", slog.String("error", err.Error()))
		}

		return config{}, nil
	}

	return config(doc), nil
}

// config implements [kong.Resolver] over a decoded YAML document.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := c.lookup(flag.Name)
	if !ok {
		return nil, nil
	}

	return flagValue(v), nil
}

// lookup finds name, or its underscore spelling, at the top level or nested
// below its leading hyphen-separated segments.
func (c config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := c[key]; ok {
			return v, true
		}
	}

	for i, r := range name {
		if r != '-' {
			continue
		}

		sub, ok := c[name[:i]].(map[string]any)
		if !ok {
			continue
		}

		if v, ok := config(sub).lookup(name[i+1:]); ok {
			return v, true
		}
	}

	return nil, false
}

// flagValue converts a decoded YAML value into a form kong can decode.
// Numbers become strings, sequences comma-separated lists, and mappings
// NAME=VALUE pairs separated by semicolons.
func flagValue(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(parts, ",")

	case map[string]any:
		pairs := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			pairs = append(pairs, k+"="+fmt.Sprint(flagValue(v[k])))
		}

		return strings.Join(pairs, ";")

	default:
		return fmt.Sprint(v)
	}
}
