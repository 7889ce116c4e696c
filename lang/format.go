package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program in canonical formula syntax. Statements are
// written one per line and nested blocks are indented by indent spaces; an
// indent of 0 writes the whole program on one line separated by "; ".
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{indent: indent}
	f.statements(p.root.Stmts, 0)

	_, err := fmt.Fprintln(w, f.sb.String())

	return err
}

// String returns the canonical single-line form of the program.
func (p *Program) String() string {
	f := &formatter{}
	f.statements(p.root.Stmts, 0)

	return f.sb.String()
}

// FormatJSON writes the syntax tree as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p.ToMap())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the syntax tree as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// Print writes an indented outline of the syntax tree, one node per line
// with its source position.
func (p *Program) Print(w io.Writer) error {
	var sb strings.Builder

	outline(&sb, p.root, 0)

	_, err := io.WriteString(w, sb.String())

	return err
}

func outline(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))

	var kids []Node

	switch n := n.(type) {
	case *Literal:
		fmt.Fprintf(sb, "Literal %s %s", n.Value.Type, n.Value)

	case *VariableRef:
		fmt.Fprintf(sb, "VariableRef %s", n.Name)

	case *BinaryOp:
		fmt.Fprintf(sb, "BinaryOp %s", n.Op)
		kids = []Node{n.Left, n.Right}

	case *UnaryOp:
		fmt.Fprintf(sb, "UnaryOp %s", n.Op)
		kids = []Node{n.Operand}

	case *Call:
		fmt.Fprintf(sb, "Call %s/%d", n.Name, len(n.Args))
		kids = n.Args

	case *Index:
		sb.WriteString("Index")
		kids = []Node{n.Target, n.Key}

	case *If:
		sb.WriteString("If")
		kids = []Node{n.Cond, n.Then}

		if n.Else != nil {
			kids = append(kids, n.Else)
		}

	case *Let:
		fmt.Fprintf(sb, "Let %s %s", n.Keyword, n.Name)
		kids = []Node{n.Expr}

	case *Block:
		fmt.Fprintf(sb, "Block (%d)", len(n.Stmts))
		kids = n.Stmts

	case *ListLiteral:
		fmt.Fprintf(sb, "ListLiteral (%d)", len(n.Elems))
		kids = n.Elems

	case *MapLiteral:
		keys := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			keys[i] = e.Key
			kids = append(kids, e.Value)
		}

		fmt.Fprintf(sb, "MapLiteral {%s}", strings.Join(keys, ", "))
	}

	fmt.Fprintf(sb, " @%s\n", n.Pos())

	for _, k := range kids {
		outline(sb, k, depth+1)
	}
}

// FormatTokens writes one token per line as "line:col KIND lexeme".
func FormatTokens(w io.Writer, toks []Token) error {
	for _, t := range toks {
		lexeme := t.Lexeme
		if t.Kind == TokenString {
			lexeme = strconv.Quote(lexeme)
		}

		nl := ""
		if t.Newline {
			nl = " ⏎"
		}

		if _, err := fmt.Fprintf(w, "%-7s %-8s %s%s\n",
			t.Pos, t.Kind, lexeme, nl); err != nil {
			return err
		}
	}

	return nil
}

// ToMap converts the syntax tree into nested maps and slices for structured
// encoding.
func (p *Program) ToMap() map[string]any {
	return map[string]any{
		"source": p.source,
		"key":    p.Key(),
		"root":   nodeMap(p.root),
	}
}

func nodeMap(n Node) map[string]any {
	m := map[string]any{"pos": n.Pos().String()}

	switch n := n.(type) {
	case *Literal:
		m["node"] = "Literal"
		m["type"] = n.Value.Type.String()
		m["value"] = n.Value.Native()

	case *VariableRef:
		m["node"] = "VariableRef"
		m["name"] = n.Name

	case *BinaryOp:
		m["node"] = "BinaryOp"
		m["op"] = n.Op
		m["left"] = nodeMap(n.Left)
		m["right"] = nodeMap(n.Right)

	case *UnaryOp:
		m["node"] = "UnaryOp"
		m["op"] = n.Op
		m["operand"] = nodeMap(n.Operand)

	case *Call:
		m["node"] = "Call"
		m["name"] = n.Name
		m["args"] = nodeMaps(n.Args)

	case *Index:
		m["node"] = "Index"
		m["target"] = nodeMap(n.Target)
		m["key"] = nodeMap(n.Key)

	case *If:
		m["node"] = "If"
		m["cond"] = nodeMap(n.Cond)
		m["then"] = nodeMap(n.Then)

		if n.Else != nil {
			m["else"] = nodeMap(n.Else)
		}

	case *Let:
		m["node"] = "Let"
		m["keyword"] = n.Keyword
		m["name"] = n.Name
		m["expr"] = nodeMap(n.Expr)

	case *Block:
		m["node"] = "Block"
		m["stmts"] = nodeMaps(n.Stmts)

	case *ListLiteral:
		m["node"] = "ListLiteral"
		m["elems"] = nodeMaps(n.Elems)

	case *MapLiteral:
		m["node"] = "MapLiteral"

		entries := make([]any, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]any{"key": e.Key, "value": nodeMap(e.Value)}
		}

		m["entries"] = entries
	}

	return m
}

func nodeMaps(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = nodeMap(n)
	}

	return out
}

// formatter renders nodes in canonical formula syntax.
type formatter struct {
	sb     strings.Builder
	indent int
}

func (f *formatter) statements(stmts []Node, depth int) {
	for i, s := range stmts {
		if i > 0 {
			if f.indent > 0 {
				f.newline(depth)
			} else {
				f.sb.WriteString("; ")
			}
		}

		f.node(s, depth)
	}
}

func (f *formatter) newline(depth int) {
	f.sb.WriteByte('\n')
	f.sb.WriteString(strings.Repeat(" ", f.indent*depth))
}

func (f *formatter) block(b *Block, depth int) {
	f.sb.WriteByte('{')

	if len(b.Stmts) == 0 {
		f.sb.WriteByte('}')

		return
	}

	if f.indent > 0 {
		f.newline(depth + 1)
		f.statements(b.Stmts, depth+1)
		f.newline(depth)
	} else {
		f.sb.WriteByte(' ')
		f.statements(b.Stmts, depth+1)
		f.sb.WriteByte(' ')
	}

	f.sb.WriteByte('}')
}

func (f *formatter) node(n Node, depth int) {
	switch n := n.(type) {
	case *Literal:
		f.sb.WriteString(n.Value.String())

	case *VariableRef:
		f.sb.WriteString(n.Name)

	case *BinaryOp:
		prec := precedence(Token{Kind: TokenOperator, Lexeme: n.Op})
		f.operand(n.Left, prec, false, depth)
		f.sb.WriteString(" " + n.Op + " ")
		f.operand(n.Right, prec, true, depth)

	case *UnaryOp:
		f.sb.WriteString(n.Op)
		f.operand(n.Operand, precUnary, false, depth)

	case *Call:
		f.sb.WriteString(n.Name)
		f.sb.WriteByte('(')
		f.list(n.Args, depth)
		f.sb.WriteByte(')')

	case *Index:
		f.operand(n.Target, precCallIndex, false, depth)
		f.sb.WriteByte('[')
		f.node(n.Key, depth)
		f.sb.WriteByte(']')

	case *If:
		f.sb.WriteString("if (")
		f.node(n.Cond, depth)
		f.sb.WriteString(") ")
		f.block(n.Then, depth)

		if n.Else != nil {
			f.sb.WriteString(" else ")

			if b, ok := n.Else.(*Block); ok {
				f.block(b, depth)
			} else {
				f.node(n.Else, depth)
			}
		}

	case *Let:
		f.sb.WriteString(n.Keyword + " " + n.Name + " = ")
		f.node(n.Expr, depth)

	case *Block:
		f.block(n, depth)

	case *ListLiteral:
		f.sb.WriteByte('[')
		f.list(n.Elems, depth)
		f.sb.WriteByte(']')

	case *MapLiteral:
		f.sb.WriteByte('{')

		for i, e := range n.Entries {
			if i > 0 {
				f.sb.WriteString(", ")
			}

			if IsIdentifier(e.Key) {
				f.sb.WriteString(e.Key)
			} else {
				f.sb.WriteString(strconv.Quote(e.Key))
			}

			f.sb.WriteString(": ")
			f.node(e.Value, depth)
		}

		f.sb.WriteByte('}')
	}
}

func (f *formatter) list(nodes []Node, depth int) {
	for i, n := range nodes {
		if i > 0 {
			f.sb.WriteString(", ")
		}

		f.node(n, depth)
	}
}

// operand writes n, parenthesized when its binding is weaker than the
// enclosing operator. Right operands of equal precedence are parenthesized
// to preserve left associativity.
func (f *formatter) operand(n Node, parent int, right bool, depth int) {
	prec := precCallIndex

	switch n := n.(type) {
	case *BinaryOp:
		prec = precedence(Token{Kind: TokenOperator, Lexeme: n.Op})

	case *UnaryOp:
		prec = precUnary

	case *If:
		prec = precLowest
	}

	if prec < parent || (right && prec == parent) {
		f.sb.WriteByte('(')
		f.node(n, depth)
		f.sb.WriteByte(')')

		return
	}

	f.node(n, depth)
}
