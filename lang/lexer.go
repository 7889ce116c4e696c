package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex splits formula source text into tokens. The returned slice always ends
// with a single [TokenEOF] token.
//
// Lexing stops at the first malformed character with an [ErrLex] error that
// carries the offending position.
func Lex(src string) ([]Token, error) {
	l := &lexer{input: src, line: 1, col: 1}

	return l.run()
}

// lexer holds the lexer state.
type lexer struct {
	input   string
	pos     int
	line    int
	col     int
	newline bool
	tokens  []Token
}

func (l *lexer) run() ([]Token, error) {
	for {
		l.skipWhitespaceAndComments()

		start := l.position()

		if l.eof() {
			l.emit(TokenEOF, "", start)

			return l.tokens, nil
		}

		r := l.peek()

		switch {
		case isDigit(r) || (r == '.' && isDigit(l.peekAt(1))):
			if err := l.lexNumber(start); err != nil {
				return nil, err
			}

		case r == '"' || r == '\'':
			if err := l.lexString(start, r); err != nil {
				return nil, err
			}

		case isIdentifierStart(r):
			l.lexIdentifier(start)

		default:
			if err := l.lexSymbol(start, r); err != nil {
				return nil, err
			}
		}
	}
}

func (l *lexer) emit(kind TokenKind, lexeme string, pos Position) {
	l.tokens = append(l.tokens, Token{
		Kind:    kind,
		Lexeme:  lexeme,
		Pos:     pos,
		Newline: l.newline,
	})
	l.newline = false
}

func (l *lexer) lexNumber(start Position) error {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()

		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if r := l.peek(); r == 'e' || r == 'E' {
		n := 1
		if s := l.peekAt(1); s == '+' || s == '-' {
			n = 2
		}

		if !isDigit(l.peekAt(n)) {
			return l.errorf(l.position(), "malformed exponent in %q",
				l.input[start.Offset:l.pos+1])
		}

		for range n {
			l.advance()
		}

		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isIdentifierStart(l.peek()) {
		return l.errorf(l.position(), "unexpected character %q after number",
			l.peek())
	}

	l.emit(TokenNumber, l.input[start.Offset:l.pos], start)

	return nil
}

func (l *lexer) lexString(start Position, quote rune) error {
	l.advance() // Opening quote

	var sb strings.Builder

	for {
		if l.eof() {
			return l.errorf(start, "unterminated string")
		}

		r := l.peek()

		switch r {
		case quote:
			l.advance()
			l.emit(TokenString, sb.String(), start)

			return nil

		case '\n':
			return l.errorf(start, "unterminated string")

		case '\\':
			esc := l.position()

			l.advance()

			switch l.peek() {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			default:
				return l.errorf(esc, "invalid escape sequence \\%c", l.peek())
			}

			l.advance()

		default:
			sb.WriteRune(r)
			l.advance()
		}
	}
}

func (l *lexer) lexIdentifier(start Position) {
	for isIdentifierContinue(l.peek()) {
		l.advance()
	}

	word := l.input[start.Offset:l.pos]
	if IsKeyword(word) {
		l.emit(TokenKeyword, word, start)
	} else {
		l.emit(TokenIdent, word, start)
	}
}

// operators lists multi-character operators before their single-character
// prefixes so that the longest match wins.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "!",
}

const punctuation = "(),[]{}:=;"

func (l *lexer) lexSymbol(start Position, r rune) error {
	rest := l.input[l.pos:]

	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range len(op) {
				l.advance()
			}

			l.emit(TokenOperator, op, start)

			return nil
		}
	}

	if strings.ContainsRune(punctuation, r) {
		l.advance()
		l.emit(TokenPunct, string(r), start)

		return nil
	}

	return l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return ErrLex.Detailf(format, args...).At(pos, l.input)
}

// Helper methods

func (l *lexer) peek() rune { return l.peekAt(0) }

// peekAt returns the rune n bytes ahead. Callers only look ahead past ASCII.
func (l *lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos+n:])

	return r
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		r := l.peek()

		switch {
		case r == '\n':
			l.newline = true
			l.advance()

		case unicode.IsSpace(r):
			l.advance()

		case r == '#' || (r == '/' && l.peekAt(1) == '/'):
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		default:
			return
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
