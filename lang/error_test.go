package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"sentinel", ErrDivisionByZero, "division by zero"},
		{"detail", ErrUnknownVariable.Detailf("%s", "quantity"), "unknown variable: quantity"},
		{
			"wrapped",
			ErrServiceUnavailable.Wrap(errors.New("dial tcp: refused")),
			"service unavailable: dial tcp: refused",
		},
		{
			"position",
			ErrParse.Detailf("unexpected token %q", "*").At(Position{Offset: 4, Line: 1, Column: 5}, "2 + * 3"),
			`parse error at line 1, column 5: unexpected token "*"`,
		},
		{"wrapped plain error", WrapError(errors.New("plain")), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Immutability(t *testing.T) {
	refined := ErrTypeMismatch.Detailf("x").With(slog.String("k", "v"))

	if ErrTypeMismatch.Detail() != "" {
		t.Error("refining a sentinel modified it")
	}

	if !errors.Is(refined, ErrTypeMismatch) {
		t.Error("refined error does not match its sentinel")
	}

	if errors.Is(refined, ErrDivisionByZero) {
		t.Error("refined error matches an unrelated sentinel")
	}
}

func TestError_WrapChain(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("context: %w", ErrUnknownCurrency.Wrap(cause))

	if !errors.Is(err, ErrUnknownCurrency) {
		t.Error("expected chain to match ErrUnknownCurrency")
	}

	if !errors.Is(err, cause) {
		t.Error("expected chain to reach root cause")
	}

	if KindOf(err) != KindUnknownCurrency {
		t.Errorf("KindOf = %v, want %v", KindOf(err), KindUnknownCurrency)
	}

	if KindOf(cause) != KindInternal {
		t.Errorf("KindOf(plain) = %v, want %v", KindOf(cause), KindInternal)
	}
}

func TestError_Snippet(t *testing.T) {
	src := "def a = 1\ndef b = a + * 2"

	_, err := Parse(src)

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %v", err)
	}

	want := "  2 | def b = a + * 2\n" +
		"                  ^\n"

	if got := ee.Snippet(); got != want {
		t.Errorf("snippet mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestError_SnippetWithoutPosition(t *testing.T) {
	if s := ErrInternal.Snippet(); s != "" {
		t.Errorf("expected empty snippet, got %q", s)
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrArityMismatch.Detailf("f expects 1, got 2").With(slog.String("function", "f"))

	attrs := err.LogValue().Group()

	got := make(map[string]string, len(attrs))
	for _, a := range attrs {
		got[a.Key] = a.Value.String()
	}

	for key, want := range map[string]string{
		"kind":     "ArityMismatch",
		"error":    "wrong number of arguments",
		"detail":   "f expects 1, got 2",
		"function": "f",
	} {
		if got[key] != want {
			t.Errorf("attr %s = %q, want %q", key, got[key], want)
		}
	}
}

func TestKind_String(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindLex:             "LexError",
		KindParse:           "ParseError",
		KindDivisionByZero:  "DivisionByZero",
		KindIndexOutOfRange: "IndexOutOfRange",
		Kind(99):            "Kind(99)",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d: got %q, want %q", int(kind), got, want)
		}
	}

	if !KindParse.IsCompileTime() || KindTypeMismatch.IsCompileTime() {
		t.Error("unexpected IsCompileTime classification")
	}

	if !strings.HasPrefix(ErrLex.Error(), "lex") {
		t.Errorf("unexpected lex message %q", ErrLex.Error())
	}
}

func TestTokenKindAndType_String(t *testing.T) {
	tests := []struct {
		got  fmt.Stringer
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenOperator, "OPERATOR"},
		{TokenPunct, "PUNCT"},
		{TokenKind(-1), "TokenKind(-1)"},
		{TypeUnit, "Unit"},
		{TypeBoolean, "Boolean"},
		{TypeRef, "Ref"},
		{Type(42), "Type(42)"},
		{KindInternal, "Internal"},
	}

	for _, tt := range tests {
		if got := tt.got.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
