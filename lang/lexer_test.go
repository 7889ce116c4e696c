package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestLex_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []TokenKind
		lex   []string
	}{
		{
			name:  "arithmetic",
			input: "2 + 2 * 3",
			kinds: []TokenKind{TokenNumber, TokenOperator, TokenNumber, TokenOperator, TokenNumber, TokenEOF},
			lex:   []string{"2", "+", "2", "*", "3", ""},
		},
		{
			name:  "floats and exponents",
			input: "1.5 2e3 1.5E-2 .25",
			kinds: []TokenKind{TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenEOF},
			lex:   []string{"1.5", "2e3", "1.5E-2", ".25", ""},
		},
		{
			name:  "two-character operators",
			input: "a<=b&&c!=d||!e",
			kinds: []TokenKind{
				TokenIdent, TokenOperator, TokenIdent, TokenOperator, TokenIdent,
				TokenOperator, TokenIdent, TokenOperator, TokenOperator, TokenIdent, TokenEOF,
			},
			lex: []string{"a", "<=", "b", "&&", "c", "!=", "d", "||", "!", "e", ""},
		},
		{
			name:  "keywords and punctuation",
			input: `def x = if (true) { [1] } else { {k: "v"} };`,
			kinds: []TokenKind{
				TokenKeyword, TokenIdent, TokenPunct, TokenKeyword, TokenPunct,
				TokenKeyword, TokenPunct, TokenPunct, TokenPunct, TokenNumber,
				TokenPunct, TokenPunct, TokenKeyword, TokenPunct, TokenPunct,
				TokenIdent, TokenPunct, TokenString, TokenPunct, TokenPunct,
				TokenPunct, TokenEOF,
			},
		},
		{
			name:  "comments",
			input: "1 // one\n# two\n2",
			kinds: []TokenKind{TokenNumber, TokenNumber, TokenEOF},
			lex:   []string{"1", "2", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			kinds := make([]TokenKind, len(toks))
			lex := make([]string, len(toks))

			for i, tok := range toks {
				kinds[i] = tok.Kind
				lex[i] = tok.Lexeme
			}

			if !slices.Equal(kinds, tt.kinds) {
				t.Errorf("kinds = %v, want %v", kinds, tt.kinds)
			}

			if tt.lex != nil && !slices.Equal(lex, tt.lex) {
				t.Errorf("lexemes = %q, want %q", lex, tt.lex)
			}
		})
	}
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" inside"`, `quote " inside`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"héllo wörld"`, "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if toks[0].Kind != TokenString || toks[0].Lexeme != tt.want {
				t.Errorf("got %v %q, want STRING %q", toks[0].Kind, toks[0].Lexeme, tt.want)
			}
		})
	}
}

func TestLex_NewlineFlag(t *testing.T) {
	toks, err := Lex("a\nb c\n\n  d")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []bool{false, true, false, true, false}
	for i, tok := range toks {
		if tok.Newline != want[i] {
			t.Errorf("token %d (%s): newline = %v, want %v", i, tok, tok.Newline, want[i])
		}
	}
}

func TestLex_Positions(t *testing.T) {
	toks, err := Lex("x +\n  yy")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 2, Line: 1, Column: 3},
		{Offset: 6, Line: 2, Column: 3},
	}

	for i, pos := range want {
		if toks[i].Pos != pos {
			t.Errorf("token %d position = %+v, want %+v", i, toks[i].Pos, pos)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		col   int
	}{
		{"unexpected character", "1 + @", 1, 5},
		{"unterminated string", `"abc`, 1, 1},
		{"bad escape", `"a\qb"`, 1, 3},
		{"malformed exponent", "1e+", 1, 2},
		{"letter after number", "12abc", 1, 3},
		{"second line", "1\n  $", 2, 3},
		{"single ampersand", "a & b", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, ErrLex) {
				t.Fatalf("expected ErrLex, got %v", err)
			}

			var ee *Error
			if !errors.As(err, &ee) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if ee.Kind() != KindLex {
				t.Errorf("kind = %v, want %v", ee.Kind(), KindLex)
			}

			if pos := ee.Position(); pos.Line != tt.line || pos.Column != tt.col {
				t.Errorf("position = %s, want %d:%d", pos, tt.line, tt.col)
			}
		})
	}
}

func TestLex_Deterministic(t *testing.T) {
	src := "def a = [1, 2.5, \"x\"]\nif (a[0] > 0) { a } else { {k: a} }"

	first, err := Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	second, err := Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if !slices.Equal(first, second) {
		t.Error("lexing the same source twice produced different tokens")
	}
}
