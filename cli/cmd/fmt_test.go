package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/formula/lang"
)

// writeSource writes text to a formula file in a temporary directory.
func writeSource(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.formula")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	return path
}

func TestFmt_Native(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{
			name:  "normalizes spacing",
			input: "2+3*  4",
			want:  "2 + 3 * 4\n",
		},
		{
			name:  "one statement per line",
			input: "def rate = 3; rate*2",
			want:  "def rate = 3\nrate * 2\n",
		},
		{
			name:  "single line",
			input: "def rate = 3\nrate*2",
			args:  []string{"-i", "0"},
			want:  "def rate = 3; rate * 2\n",
		},
		{
			name:  "nested block",
			input: "if (x) { def y = 1; y } else { 2 }",
			want:  "if (x) {\n  def y = 1\n  y\n} else {\n  2\n}\n",
		},
		{
			name:  "comments dropped",
			input: "# header\n1 + 1 // trailing",
			want:  "1 + 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, tt.input)

			args := append([]string{"fmt"}, tt.args...)
			args = append(args, path)

			stdout, _, err := execute(t, nil, nil, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestFmt_InvalidSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  lang.Kind
	}{
		{"unclosed paren", "(1 + 2", lang.KindParse},
		{"dangling operator", "1 +", lang.KindParse},
		{"bad character", "1 @ 2", lang.KindLex},
		{"unterminated string", `"abc`, lang.KindLex},
	}

	for _, tt := range tests {
		for _, format := range []string{"native", "json", "yaml", "ast", "tokens"} {
			if format == "tokens" && tt.kind == lang.KindParse {
				continue
			}

			t.Run(tt.name+"/"+format, func(t *testing.T) {
				path := writeSource(t, tt.input)

				_, _, err := execute(t, nil, nil, "fmt", format, path)
				require.Error(t, err)
				assert.Equal(t, tt.kind, lang.KindOf(err), "error: %v", err)
			})
		}
	}
}

func TestFmt_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.formula")

	_, _, err := execute(t, nil, nil, "fmt", "ast", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadSource)
}

func TestFmt_Stdin(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdin := os.Stdin
	os.Stdin = r

	t.Cleanup(func() {
		os.Stdin = stdin
		r.Close()
	})

	go func() {
		defer w.Close()

		_, _ = io.WriteString(w, "max( 1,2 )")
	}()

	stdout, _, err := execute(t, nil, nil, "fmt", "native", "-")
	require.NoError(t, err)
	assert.Equal(t, "max(1, 2)\n", stdout)
}

func TestFmt_JSON(t *testing.T) {
	path := writeSource(t, "price * 2")

	stdout, _, err := execute(t, nil, nil, "fmt", "json", path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	assert.Equal(t, "price * 2", got["source"])
	assert.Equal(t, lang.SourceKey("price * 2"), got["key"])
	assert.Contains(t, got, "root")
}

func TestFmt_YAML(t *testing.T) {
	path := writeSource(t, "price * 2")

	for _, indent := range []string{"0", "4"} {
		t.Run("indent "+indent, func(t *testing.T) {
			stdout, _, err := execute(t, nil, nil, "fmt", "yaml", "-i", indent, path)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))

			assert.Equal(t, "price * 2", got["source"])
			assert.Contains(t, got, "root")
		})
	}
}

func TestFmt_AST(t *testing.T) {
	path := writeSource(t, "price * 2")

	stdout, _, err := execute(t, nil, nil, "fmt", "ast", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[0], "Block (1)"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  BinaryOp *"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "    VariableRef price"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "    Literal Integer 2"), lines[3])
}

func TestFmt_Tokens(t *testing.T) {
	path := writeSource(t, `len("ab")`)

	stdout, _, err := execute(t, nil, nil, "fmt", "tokens", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 5)

	kinds := make([]string, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		require.GreaterOrEqual(t, len(fields), 2, line)
		kinds[i] = fields[1]
	}

	assert.Equal(t, []string{"IDENT", "PUNCT", "STRING", "PUNCT", "EOF"}, kinds)
	assert.Contains(t, lines[2], `"ab"`)
	assert.True(t, strings.HasPrefix(lines[0], "1:1 "), lines[0])
}
