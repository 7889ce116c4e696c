// Package lang implements the formula language: a lexer, a Pratt parser
// producing an immutable syntax tree, and a tree-walking evaluator that
// resolves variables from an [Environment] and function calls through a
// [Registry].
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement ( Sep Statement )* EOF
//	Sep         → ';' | <line break outside brackets>
//	Statement   → ( 'def' | 'let' ) Identifier '=' Expr | Expr
//	Expr        → Prefix ( Infix Expr | '(' Args ')' | '[' Expr ']' )*
//	Prefix      → Number | String | 'true' | 'false' | Identifier
//	            | ( '-' | '!' ) Expr | '(' Expr ')' | List | Map | If
//	If          → 'if' Expr Block ( 'else' ( If | Block ) )?
//	Block       → '{' Statement ( Sep Statement )* '}'
//	List        → '[' ( Expr ( ',' Expr )* ','? )? ']'
//	Map         → '{' ( Key ':' Expr ( ',' Key ':' Expr )* ','? )? '}'
//
// Operators from lowest to highest precedence:
//
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* / %
//	- ! (unary)
//	call, index
//
// # Example
//
//	def total = price * quantity
//	def tax = total * 0.1
//	if (total > 1000) {
//	    total + tax - discount(total, 5)
//	} else {
//	    total + tax
//	}
//
// # Values
//
// Integer arithmetic stays Integer except for "/", which always yields a
// Float. Mixed Integer and Float operands promote to Float. Division or
// remainder by zero fails with [KindDivisionByZero] rather than producing an
// infinity.
//
// # Errors
//
// Compilation fails with [ErrLex] or [ErrParse], which carry a source
// position and render a caret snippet via [Error.Snippet]. Evaluation never
// returns a Go error; failures are reported through [Result] with one of the
// [Kind] values.
package lang
