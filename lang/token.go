package lang

//go:generate go tool stringer --linecomment --type TokenKind,Kind,Type --output kind_string.go

import (
	"maps"
	"slices"
	"strconv"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF      TokenKind = iota // EOF
	TokenNumber                    // NUMBER
	TokenString                    // STRING
	TokenIdent                     // IDENT
	TokenOperator                  // OPERATOR
	TokenKeyword                   // KEYWORD
	TokenPunct                     // PUNCT
)

// Position identifies a location in formula source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to a real source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// Token is a single lexeme of formula text.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    Position
	// Newline reports whether at least one line break separates this token
	// from the previous one.
	Newline bool
}

// Is reports whether the token has the given kind and lexeme.
func (t Token) Is(kind TokenKind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// String returns a printable representation used in diagnostics.
func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}

	return strconv.Quote(t.Lexeme)
}

// keywords are reserved identifiers.
var keywords = map[string]struct{}{
	"if":    {},
	"else":  {},
	"def":   {},
	"let":   {},
	"true":  {},
	"false": {},
}

// Keywords returns the reserved words in lexical order.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool {
	_, ok := keywords[name]

	return ok
}
