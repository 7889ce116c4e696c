package lang

// Node is an element of a parsed formula. All nodes are immutable once the
// parser returns them.
type Node interface {
	Pos() Position
	node()
}

// Literal is a constant number, string or boolean.
type Literal struct {
	At    Position
	Value Value
}

// VariableRef names a variable resolved at evaluation time.
type VariableRef struct {
	At   Position
	Name string
}

// BinaryOp applies an infix operator.
type BinaryOp struct {
	At    Position
	Op    string
	Left  Node
	Right Node
}

// UnaryOp applies a prefix operator ("-" or "!").
type UnaryOp struct {
	At      Position
	Op      string
	Operand Node
}

// Call invokes a registered function by name.
type Call struct {
	At   Position
	Name string
	Args []Node
}

// Index selects an element of a List or a field of a Map.
type Index struct {
	At     Position
	Target Node
	Key    Node
}

// If evaluates Then when Cond is true and Else otherwise. Else is nil when
// the formula has no else branch; an else-if chain nests another If.
type If struct {
	At   Position
	Cond Node
	Then *Block
	Else Node
}

// Let binds Name to the value of Expr for the rest of the enclosing block.
// Keyword is "def" or "let".
type Let struct {
	At      Position
	Keyword string
	Name    string
	Expr    Node
}

// Block is a sequence of statements. Its value is the value of the last
// statement, or unit when empty.
type Block struct {
	At    Position
	Stmts []Node
}

// ListLiteral constructs a List.
type ListLiteral struct {
	At    Position
	Elems []Node
}

// MapEntry is one key: value pair of a [MapLiteral].
type MapEntry struct {
	Key   string
	Value Node
}

// MapLiteral constructs a Map with entries in source order.
type MapLiteral struct {
	At      Position
	Entries []MapEntry
}

func (n *Literal) Pos() Position     { return n.At }
func (n *VariableRef) Pos() Position { return n.At }
func (n *BinaryOp) Pos() Position    { return n.At }
func (n *UnaryOp) Pos() Position     { return n.At }
func (n *Call) Pos() Position        { return n.At }
func (n *Index) Pos() Position       { return n.At }
func (n *If) Pos() Position          { return n.At }
func (n *Let) Pos() Position         { return n.At }
func (n *Block) Pos() Position       { return n.At }
func (n *ListLiteral) Pos() Position { return n.At }
func (n *MapLiteral) Pos() Position  { return n.At }

func (*Literal) node()     {}
func (*VariableRef) node() {}
func (*BinaryOp) node()    {}
func (*UnaryOp) node()     {}
func (*Call) node()        {}
func (*Index) node()       {}
func (*If) node()          {}
func (*Let) node()         {}
func (*Block) node()       {}
func (*ListLiteral) node() {}
func (*MapLiteral) node()  {}

// Walk calls fn for n and each of its descendants in depth-first order,
// stopping descent into a subtree when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch n := n.(type) {
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryOp:
		Walk(n.Operand, fn)

	case *Call:
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *Index:
		Walk(n.Target, fn)
		Walk(n.Key, fn)

	case *If:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)

		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *Let:
		Walk(n.Expr, fn)

	case *Block:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *ListLiteral:
		for _, e := range n.Elems {
			Walk(e, fn)
		}

	case *MapLiteral:
		for _, e := range n.Entries {
			Walk(e.Value, fn)
		}
	}
}
