package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/formula/lang"
)

// Styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call around cursor and the
// index of the argument being typed. Parentheses and commas inside string
// literals and list brackets are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		if inString(input, i) {
			continue
		}

		switch r {
		case ')', ']':
			depth++

		case '(', '[':
			if depth > 0 {
				depth--

				continue
			}

			if r == '(' {
				open = i
			}

			i = 0 // stop at the first unclosed bracket
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if !lang.IsIdentifier(name) {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for i, r := range input[open+1 : cursor] {
		if inString(input, open+1+i) {
			continue
		}

		switch r {
		case '(', '[', '{':
			depth++

		case ')', ']', '}':
			depth--

		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature and parameter names of the registered
// function name, or "" when there is none.
func getSignature(reg *lang.Registry, name string) (signature string, params []string) {
	fn, ok := reg.Resolve(name)
	if !ok {
		return "", nil
	}

	params = fn.Params
	if len(params) == 0 && fn.Arity == lang.Variadic {
		params = []string{"...args"}
	}

	return fn.Signature(), params
}

// renderSignatureHint renders signature with the parameter at currentArgIdx
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	name, _, ok := strings.Cut(signature, "(")
	if !ok || !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	if len(params) == 0 {
		return signatureNameStyle.Render(name) + signatureStyle.Render("()")
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if (variadic && currentArgIdx >= i) || (!variadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
