package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/pkg"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want lang.Value
	}{
		{"42", lang.NewInteger(42)},
		{"-7", lang.NewInteger(-7)},
		{"2.50", lang.NewFloat(2.5)},
		{".5", lang.NewFloat(0.5)},
		{"1.2.3", lang.NewString("1.2.3")},
		{"USD", lang.NewString("USD")},
		{"", lang.NewString("")},
		{"99999999999999999999", lang.NewString("99999999999999999999")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseValue(tt.in)
			assert.True(t, got.Equal(tt.want), "ParseValue(%q) = %s, want %s", tt.in, got, tt.want)
			assert.Equal(t, tt.want.Type, got.Type)
		})
	}
}

func TestParseBinding(t *testing.T) {
	name, v, err := ParseBinding("rate=0.2")
	require.NoError(t, err)
	assert.Equal(t, "rate", name)
	assert.True(t, v.Equal(lang.NewFloat(0.2)))

	name, v, err = ParseBinding("label=a=b")
	require.NoError(t, err)
	assert.Equal(t, "label", name)
	assert.Equal(t, "a=b", v.Display())

	for _, bad := range []string{"rate", "=1", "2x=1", "a b=1", "if=1"} {
		_, _, err := ParseBinding(bad)
		assert.ErrorIs(t, err, pkg.ErrInvalidBinding, bad)
	}
}

func TestBindings(t *testing.T) {
	env, err := bindings([]string{"a=1", "b=x", "a=2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, env.Names())

	a, ok := env.Get("a")
	require.True(t, ok)
	assert.True(t, a.Equal(lang.NewInteger(2)))

	_, err = bindings([]string{"a=1", "oops"})
	assert.ErrorIs(t, err, pkg.ErrInvalidBinding)
}
