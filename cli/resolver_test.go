package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveString(t *testing.T, doc string) config {
	t.Helper()

	r, err := resolveYAML(strings.NewReader(doc))
	require.NoError(t, err)

	c, ok := r.(config)
	require.True(t, ok, "resolver type %T", r)

	return c
}

func TestResolveYAML_Lookup(t *testing.T) {
	c := resolveString(t, `
log-level: debug
rates_timeout: 5s
engine:
  max-depth: 64
log:
  pretty: false
`)

	tests := []struct {
		name string
		flag string
		want any
		ok   bool
	}{
		{"hyphenated", "log-level", "debug", true},
		{"underscore spelling", "rates-timeout", "5s", true},
		{"nested under group", "engine-max-depth", 64, true},
		{"nested with prefix", "log-pretty", false, true},
		{"missing", "records-db", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.lookup(tt.flag)
			assert.Equal(t, tt.ok, ok)
			// Integer width depends on the decoder; compare printed forms.
			assert.Equal(t, fmt.Sprint(tt.want), fmt.Sprint(got))
		})
	}
}

func TestResolveYAML_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"malformed": "log-level: [unterminated",
		"scalar":    "just a string",
	} {
		t.Run(name, func(t *testing.T) {
			r, err := resolveYAML(strings.NewReader(doc))
			require.NoError(t, err)

			v, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}})
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "text", "text"},
		{"int", 3, "3"},
		{"uint64", uint64(64), "64"},
		{"int64", int64(-2), "-2"},
		{"float", 2.5, "2.5"},
		{"list", []any{"a", uint64(1)}, "a,1"},
		{"map", map[string]any{"b": uint64(2), "a": 1.5}, "a=1.5;b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flagValue(tt.in))
		})
	}
}

// TestResolveYAML_Kong checks that resolved values reach kong flags of each
// kind used by the CLI.
func TestResolveYAML_Kong(t *testing.T) {
	var flags struct {
		Level    string            `default:"info"`
		Timeout  time.Duration     `default:"10s"`
		Depth    int               `default:"1"`
		Cache    bool              `default:"true" negatable:""`
		Constant map[string]string
	}

	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`
level: debug
timeout: 250ms
depth: 12
cache: false
constant:
  taxRate: 20
  pi: 3.14
`), 0o600))

	parser, err := kong.New(&flags, kong.Configuration(resolveYAML, path))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--depth", "7"})
	require.NoError(t, err)

	assert.Equal(t, "debug", flags.Level)
	assert.Equal(t, 250*time.Millisecond, flags.Timeout)
	assert.Equal(t, 7, flags.Depth, "command line overrides config")
	assert.False(t, flags.Cache)
	assert.Equal(t, map[string]string{"taxRate": "20", "pi": "3.14"}, flags.Constant)
}
