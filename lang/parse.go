package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Parse lexes and parses formula source text into a [Program].
//
// Statements are separated by ";" or by a line break outside of brackets.
// Parsing halts at the first error, which is an [ErrLex] or [ErrParse]
// carrying the failing position.
func Parse(src string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks, maxDepth: o.maxDepth}

	root, err := p.parseStatements(nil)
	if err != nil {
		return nil, err
	}

	if t := p.cur(); t.Kind != TokenEOF {
		return nil, p.errorf(t, "unexpected token %s", t)
	}

	return newProgram(src, root), nil
}

// Operator precedence, lowest to highest. Binary operators are
// left-associative.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precCompare
	precAdd
	precMul
	precUnary
	precCallIndex
)

func precedence(t Token) int {
	if t.Kind != TokenOperator {
		return precLowest
	}

	switch t.Lexeme {
	case "||":
		return precOr

	case "&&":
		return precAnd

	case "==", "!=":
		return precEquality

	case "<", "<=", ">", ">=":
		return precCompare

	case "+", "-":
		return precAdd

	case "*", "/", "%":
		return precMul

	default:
		return precLowest
	}
}

// parser holds the parser state.
type parser struct {
	src  string
	toks []Token
	pos  int
	// depth counts open parentheses, list brackets and map braces. Line
	// breaks only end statements at depth 0.
	depth int
	// nesting counts active expression productions.
	nesting  int
	maxDepth int
}

// parseStatements parses statements until EOF, or until the closing brace of
// the block opened by open (which is left unconsumed).
func (p *parser) parseStatements(open *Token) (*Block, error) {
	block := &Block{At: p.cur().Pos}
	if open != nil {
		block.At = open.Pos
	}

	for {
		for p.cur().Is(TokenPunct, ";") {
			p.next()
		}

		t := p.cur()

		if t.Kind == TokenEOF {
			if open != nil {
				return nil, p.errorf(*open, "unmatched %q", open.Lexeme)
			}

			return block, nil
		}

		if open != nil && t.Is(TokenPunct, "}") {
			return block, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)

		// A statement ends at ";", a line break, the end of input or the end
		// of the enclosing block.
		switch t := p.cur(); {
		case t.Kind == TokenEOF, t.Newline, t.Is(TokenPunct, ";"):
		case open != nil && t.Is(TokenPunct, "}"):
		default:
			return nil, p.errorf(t, "unexpected token %s", t)
		}
	}
}

func (p *parser) parseStatement() (Node, error) {
	t := p.cur()
	if t.Is(TokenKeyword, "def") || t.Is(TokenKeyword, "let") {
		return p.parseLet()
	}

	return p.parseExpression(precLowest)
}

// parseLet parses: ("def" | "let") IDENT "=" expression.
func (p *parser) parseLet() (Node, error) {
	kw := p.next()

	name := p.next()
	if name.Kind != TokenIdent {
		return nil, p.errorf(name, "expected identifier after %q, found %s",
			kw.Lexeme, name)
	}

	if _, err := p.expect(TokenPunct, "="); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	return &Let{At: kw.Pos, Keyword: kw.Lexeme, Name: name.Lexeme, Expr: expr}, nil
}

func (p *parser) parseExpression(minPrec int) (Node, error) {
	p.nesting++
	defer func() { p.nesting-- }()

	if p.maxDepth > 0 && p.nesting > p.maxDepth {
		return nil, p.errorf(p.cur(), "expression nesting exceeds %d", p.maxDepth)
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		t := p.cur()

		if t.Newline && p.depth == 0 {
			return left, nil
		}

		// Calls and indexing bind tighter than any prefix or infix operator.
		switch {
		case t.Is(TokenPunct, "("):
			left, err = p.parseCall(left)
			if err != nil {
				return nil, err
			}

			continue

		case t.Is(TokenPunct, "["):
			left, err = p.parseIndex(left)
			if err != nil {
				return nil, err
			}

			continue
		}

		prec := precedence(t)
		if prec == precLowest || prec <= minPrec {
			return left, nil
		}

		p.next()

		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}

		left = &BinaryOp{At: t.Pos, Op: t.Lexeme, Left: left, Right: right}
	}
}

func (p *parser) parsePrefix() (Node, error) {
	t := p.next()

	switch t.Kind {
	case TokenNumber:
		return p.parseNumber(t)

	case TokenString:
		return &Literal{At: t.Pos, Value: NewString(t.Lexeme)}, nil

	case TokenIdent:
		return &VariableRef{At: t.Pos, Name: t.Lexeme}, nil

	case TokenKeyword:
		switch t.Lexeme {
		case "true", "false":
			return &Literal{At: t.Pos, Value: NewBoolean(t.Lexeme == "true")}, nil

		case "if":
			return p.parseIf(t)
		}

	case TokenOperator:
		if t.Lexeme == "-" || t.Lexeme == "!" {
			operand, err := p.parseExpression(precUnary)
			if err != nil {
				return nil, err
			}

			return &UnaryOp{At: t.Pos, Op: t.Lexeme, Operand: operand}, nil
		}

	case TokenPunct:
		switch t.Lexeme {
		case "(":
			return p.parseGroup(t)

		case "[":
			return p.parseList(t)

		case "{":
			return p.parseMap(t)
		}

	case TokenEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}

	return nil, p.errorf(t, "unexpected token %s", t)
}

func (p *parser) parseNumber(t Token) (Node, error) {
	if strings.ContainsAny(t.Lexeme, ".eE") {
		f, err := strconv.ParseFloat(t.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %s", t).Wrap(err)
		}

		return &Literal{At: t.Pos, Value: NewFloat(f)}, nil
	}

	n, err := strconv.ParseInt(t.Lexeme, 10, 64)
	if err != nil {
		return nil, p.errorf(t, "integer literal %s out of range", t).Wrap(err)
	}

	return &Literal{At: t.Pos, Value: NewInteger(n)}, nil
}

func (p *parser) parseGroup(open Token) (Node, error) {
	p.depth++
	defer func() { p.depth-- }()

	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	if err := p.closing(open, ")"); err != nil {
		return nil, err
	}

	return expr, nil
}

// parseCall parses an argument list following a function name.
func (p *parser) parseCall(callee Node) (Node, error) {
	open := p.next()

	ref, ok := callee.(*VariableRef)
	if !ok {
		return nil, p.errorf(open, "only named functions can be called")
	}

	args, err := p.parseSequence(open, ")")
	if err != nil {
		return nil, err
	}

	return &Call{At: ref.At, Name: ref.Name, Args: args}, nil
}

func (p *parser) parseIndex(target Node) (Node, error) {
	open := p.next()

	p.depth++
	defer func() { p.depth-- }()

	key, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	if err := p.closing(open, "]"); err != nil {
		return nil, err
	}

	return &Index{At: open.Pos, Target: target, Key: key}, nil
}

func (p *parser) parseList(open Token) (Node, error) {
	elems, err := p.parseSequence(open, "]")
	if err != nil {
		return nil, err
	}

	return &ListLiteral{At: open.Pos, Elems: elems}, nil
}

// parseSequence parses comma-separated expressions up to and including the
// closing punctuation. A trailing comma is permitted.
func (p *parser) parseSequence(open Token, end string) ([]Node, error) {
	p.depth++
	defer func() { p.depth-- }()

	var items []Node

	for !p.cur().Is(TokenPunct, end) {
		if p.cur().Kind == TokenEOF {
			return nil, p.errorf(open, "unmatched %q", open.Lexeme)
		}

		item, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		if !p.cur().Is(TokenPunct, ",") {
			break
		}

		p.next()
	}

	if err := p.closing(open, end); err != nil {
		return nil, err
	}

	return items, nil
}

// parseMap parses: "{" [ key ":" expression { "," key ":" expression } ] "}".
func (p *parser) parseMap(open Token) (Node, error) {
	p.depth++
	defer func() { p.depth-- }()

	m := &MapLiteral{At: open.Pos}

	for !p.cur().Is(TokenPunct, "}") {
		key := p.next()

		switch key.Kind {
		case TokenIdent, TokenString:
		case TokenEOF:
			return nil, p.errorf(open, "unmatched %q", open.Lexeme)
		default:
			return nil, p.errorf(key, "expected map key, found %s", key)
		}

		if _, err := p.expect(TokenPunct, ":"); err != nil {
			return nil, err
		}

		val, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}

		m.Entries = append(m.Entries, MapEntry{Key: key.Lexeme, Value: val})

		if !p.cur().Is(TokenPunct, ",") {
			break
		}

		p.next()
	}

	if err := p.closing(open, "}"); err != nil {
		return nil, err
	}

	return m, nil
}

// parseIf parses: "if" expression block [ "else" ( if | block ) ].
func (p *parser) parseIf(kw Token) (Node, error) {
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	n := &If{At: kw.Pos, Cond: cond, Then: then}

	if !p.cur().Is(TokenKeyword, "else") {
		return n, nil
	}

	p.next()

	if t := p.cur(); t.Is(TokenKeyword, "if") {
		p.next()

		n.Else, err = p.parseIf(t)
	} else {
		n.Else, err = p.parseBlock()
	}

	if err != nil {
		return nil, err
	}

	return n, nil
}

// parseBlock parses a braced statement list. Line breaks inside the braces
// end statements regardless of the surrounding bracket depth.
func (p *parser) parseBlock() (*Block, error) {
	open, err := p.expect(TokenPunct, "{")
	if err != nil {
		return nil, err
	}

	saved := p.depth
	p.depth = 0

	defer func() { p.depth = saved }()

	block, err := p.parseStatements(&open)
	if err != nil {
		return nil, err
	}

	p.next() // Closing brace

	return block, nil
}

// Helper methods

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *parser) expect(kind TokenKind, lexeme string) (Token, error) {
	t := p.cur()
	if !t.Is(kind, lexeme) {
		return t, p.errorf(t, "expected %q, found %s", lexeme, t)
	}

	return p.next(), nil
}

// closing consumes the punctuation that closes open, reporting an unmatched
// bracket at the opening position when input ends first.
func (p *parser) closing(open Token, end string) error {
	t := p.cur()

	switch {
	case t.Is(TokenPunct, end):
		p.next()

		return nil

	case t.Kind == TokenEOF:
		return p.errorf(open, "unmatched %q", open.Lexeme)

	default:
		return p.errorf(t, "expected %q, found %s", end, t)
	}
}

func (p *parser) errorf(t Token, format string, args ...any) *Error {
	return ErrParse.Detailf(format, args...).
		At(t.Pos, p.src).
		With(slog.String("token", t.Kind.String()))
}
