package lang

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestValueOf(t *testing.T) {
	type record struct{ Name string }

	rec := &record{Name: "x"}

	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Unit()},
		{"int", 5, NewInteger(5)},
		{"int32", int32(-7), NewInteger(-7)},
		{"uint16", uint16(9), NewInteger(9)},
		{"float32", float32(0.5), NewFloat(0.5)},
		{"float64", 100.0, NewFloat(100)},
		{"bool", true, NewBoolean(true)},
		{"string", "s", NewString("s")},
		{"date", time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC), NewString("1990-05-15")},
		{"strings", []string{"a", "b"}, NewList(NewString("a"), NewString("b"))},
		{"any slice", []any{1, "x"}, NewList(NewInteger(1), NewString("x"))},
		{"typed slice", []float64{1.5}, NewList(NewFloat(1.5))},
		{
			"map",
			map[string]any{"b": 2, "a": 1},
			NewMap([]string{"a", "b"}, map[string]Value{"a": NewInteger(1), "b": NewInteger(2)}),
		},
		{"value passthrough", NewInteger(3), NewInteger(3)},
		{"ref", rec, NewRef(rec)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Type != tt.want.Type || !got.Equal(tt.want) {
				t.Errorf("got %s (%s), want %s (%s)", got, got.Type, tt.want, tt.want.Type)
			}
		})
	}
}

func TestValueOf_Overflow(t *testing.T) {
	_, err := ValueOf(uint64(math.MaxUint64))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestValue_Native(t *testing.T) {
	v, err := ValueOf(map[string]any{
		"n":    1,
		"f":    2.5,
		"list": []any{"a", true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"n":    int64(1),
		"f":    2.5,
		"list": []any{"a", true},
	}

	if got := v.Native(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	if Unit().Native() != nil {
		t.Error("unit should convert to nil")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Unit(), "()"},
		{NewInteger(-12), "-12"},
		{NewFloat(800), "800.0"},
		{NewFloat(41250), "41250.0"},
		{NewFloat(5.333333333333333), "5.333333333333333"},
		{NewFloat(0.1), "0.1"},
		{NewFloat(1e21), "1e+21"},
		{NewFloat(math.Inf(1)), "Infinity"},
		{NewBoolean(false), "false"},
		{NewString(`say "hi"`), `"say \"hi\""`},
		{NewList(NewInteger(1), NewString("a")), `[1, "a"]`},
		{
			NewMap([]string{"a", "b c"}, map[string]Value{"a": NewInteger(1), "b c": NewFloat(2)}),
			`{a: 1, "b c": 2.0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Display(t *testing.T) {
	if got := NewString("plain text").Display(); got != "plain text" {
		t.Errorf("got %q", got)
	}

	if got := NewList(NewString("a")).Display(); got != `["a"]` {
		t.Errorf("got %q", got)
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{NewInteger(1), NewFloat(1), true},
		{NewInteger(1), NewInteger(2), false},
		{NewString("1"), NewInteger(1), false},
		{Unit(), Unit(), true},
		{NewList(NewInteger(1)), NewList(NewFloat(1)), true},
		{NewList(NewInteger(1)), NewList(), false},
		{NewRef(nil), NewRef(nil), true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s == %s: got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment().
		Set("b", NewInteger(1)).
		Set("a", NewInteger(2)).
		Set("b", NewInteger(3))

	if got := env.Names(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("names = %v, want insertion order [b a]", got)
	}

	if v, _ := env.Get("b"); !v.Equal(NewInteger(3)) {
		t.Errorf("b = %s, want 3", v)
	}

	if env.Has("B") {
		t.Error("names must be case-sensitive")
	}

	clone := env.Clone().Set("c", NewInteger(4))
	if env.Has("c") || env.Len() != 2 || clone.Len() != 3 {
		t.Error("clone is not independent of its source")
	}

	var count int
	for range env.All() {
		count++
	}

	if count != 2 {
		t.Errorf("iterated %d bindings, want 2", count)
	}
}

func TestEnvironmentFrom(t *testing.T) {
	env, err := EnvironmentFrom(map[string]any{
		"price":    100.0,
		"quantity": 5,
		"words":    []string{"Hello", "World"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := env.Names(); !reflect.DeepEqual(got, []string{"price", "quantity", "words"}) {
		t.Errorf("names = %v", got)
	}

	if v, _ := env.Get("words"); v.Type != TypeList || v.Len() != 2 {
		t.Errorf("words = %s", v)
	}

	var nilEnv *Environment
	if nilEnv.Has("x") || nilEnv.Len() != 0 || nilEnv.Clone() == nil {
		t.Error("nil environment should behave as empty")
	}
}
