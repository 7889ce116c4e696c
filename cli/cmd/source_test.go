package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sourceDir writes the named files into a temporary directory and returns
// its path.
func sourceDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600))
	}

	return dir
}

func TestSources_ReadAll(t *testing.T) {
	dir := sourceDir(t, map[string]string{
		"a.formula": "def a = 1",
		"b.formula": "a + 1\n",
	})

	a := filepath.Join(dir, "a.formula")
	b := filepath.Join(dir, "b.formula")

	require.NoError(t, os.Symlink(a, filepath.Join(dir, "link.formula")))

	t.Chdir(dir)

	tests := []struct {
		name  string
		paths []string
		want  string
		names []string
	}{
		{"single", []string{a}, "def a = 1", []string{a}},
		{"ordered", []string{b, a}, "a + 1\n\ndef a = 1", []string{b, a}},
		{"repeated", []string{a, a, a}, "def a = 1", []string{a}},
		{"relative", []string{a, "a.formula"}, "def a = 1", []string{a}},
		{"symlink", []string{"link.formula", a, b}, "def a = 1\na + 1\n", []string{"link.formula", b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSources(tt.paths)
			assert.Equal(t, tt.names, src.Names())

			got, err := src.ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSources_Stdin(t *testing.T) {
	dir := sourceDir(t, map[string]string{"a.formula": "def a = 1"})
	a := filepath.Join(dir, "a.formula")

	src := NewSources([]string{"-", a, "-"})
	src.in = strings.NewReader("a * 2")

	assert.Equal(t, []string{a, "-"}, src.Names())

	got, err := src.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "def a = 1\na * 2", got)

	only := NewSources([]string{"-"})
	only.in = strings.NewReader("3")

	got, err = only.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestSources_Missing(t *testing.T) {
	dir := sourceDir(t, map[string]string{"a.formula": "def a = 1"})
	missing := filepath.Join(dir, "nope.formula")

	src := NewSources([]string{filepath.Join(dir, "a.formula"), missing})

	_, err := src.ReadAll()
	require.ErrorIs(t, err, ErrReadSource)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "nope.formula")
}

func TestSourcesFrom(t *testing.T) {
	_, ok := sourcesFrom(context.Background())
	assert.False(t, ok)

	_, ok = sourcesFrom(WithSourceFiles(context.Background(), nil))
	assert.False(t, ok, "empty source list")

	dir := sourceDir(t, map[string]string{"a.formula": "1"})

	src, ok := sourcesFrom(WithSourceFiles(t.Context(), []string{filepath.Join(dir, "a.formula")}))
	require.True(t, ok)
	assert.False(t, src.IsZero())
}
