package repl

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
)

// completion is the state of word completion at the cursor.
type completion struct {
	matches  fuzzy.Matches
	start    int // byte offsets of the word being completed
	end      int
	selected int   // candidate index while cycling, else -1
	cycling  bool  // Tab pressed since the last edit
	before   draft // input when cycling began
}

// isWordBoundary reports whether r delimits a word for completion. Only
// identifier characters (letters, digits and underscore) belong to a word.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset lies inside a string literal.
func inString(input string, offset int) bool {
	var quote rune

	escaped := false

	for _, r := range input[:min(offset, len(input))] {
		switch {
		case escaped:
			escaped = false

		case quote != 0 && r == '\\':
			escaped = true

		case quote != 0 && r == quote:
			quote = 0

		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		}
	}

	return quote != 0
}

// evalCandidates returns every name that may complete a word in eval mode:
// registered functions, session variables and keywords.
func (m model) evalCandidates() []string {
	names := m.eng.Registry().Names()
	names = append(names, m.env.Names()...)
	names = append(names, lang.Keywords()...)

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches ranks the candidates for the word at the cursor, best
// first, and returns the word's boundaries. An empty word has no matches so
// that the hint line stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, start, end int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, start, end
	}

	candidates := commandNames()

	if m.mode == modeEval {
		if inString(input, start) {
			return nil, start, end
		}

		candidates = m.evalCandidates()
	}

	return fuzzy.Find(word, candidates), start, end
}

// refreshMatches recomputes the matches after the input changed. With
// autoConfirm, a word already equal to its only candidate completes it;
// deletions and cursor moves pass false so editing never completes.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.start, m.end = m.computeMatches()

	if !m.cycling {
		m.selected = -1
	}

	if autoConfirm && len(m.matches) == 1 &&
		m.input.Value()[m.start:m.end] == m.matches[0].Str {
		settle(m, m.matches[0].Str)
	}
}

// replaceWord puts s in place of the word being completed.
func replaceWord(m *model, s string) {
	line := m.input.Value()

	m.input.SetValue(line[:m.start] + s + line[m.end:])
	m.end = m.start + len(s)
	m.input.SetCursor(m.end)
}

// settle completes the word with s and ends completion.
func settle(m *model, s string) {
	replaceWord(m, s)
	m.cycling = false
	m.selected = -1
	m.matches = nil
}

// cycle moves the selection by step, starting at the first or last
// candidate. A single candidate completes immediately.
func (m model) cycle(step int) (model, tea.Cmd) {
	n := len(m.matches)

	switch {
	case n == 0:
		return m, nil

	case n == 1:
		settle(&m, m.matches[0].Str)

		return m, nil

	case m.cycling:
		m.selected = ((m.selected+step)%n + n) % n

	default:
		m.cycling = true
		m.before = draftOf(m.input)

		m.selected = 0
		if step < 0 {
			m.selected = n - 1
		}
	}

	replaceWord(&m, m.matches[m.selected].Str)

	return m, nil
}

// isFunction reports whether name is a registered function.
func (m model) isFunction(name string) bool {
	if m.mode != modeEval {
		return false
	}

	_, ok := m.eng.Registry().Resolve(name)

	return ok
}

// renderCandidateBar lists the matches on one line, cut off with an
// ellipsis where the next candidate would overflow width.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	cycling bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	more := hintStyle.Render("...")
	parts := make([]string, 0, len(matches))
	used := 0

	for i, match := range matches {
		s := renderCandidate(match, cycling && i == selected, isFunc != nil && isFunc(match.Str))
		w := lipgloss.Width(s)

		if i > 0 {
			w += len(sep)

			if used+w+lipgloss.Width(more) > width {
				parts = append(parts, more)

				break
			}
		}

		parts = append(parts, s)
		used += w
	}

	return strings.Join(parts, sep)
}

// renderCandidate highlights the matched characters of a candidate.
// Functions get a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	s := lipgloss.StyleRunes(match.Str, match.MatchedIndexes, base.Bold(true), base)
	if function {
		s += base.Render("()")
	}

	return s
}

const previewWidth = 40

// preview shortens the display form of v to a single line.
func preview(v lang.Value) string {
	s := strings.Join(strings.Fields(v.Display()), " ")
	if utf8.RuneCountInString(s) > previewWidth {
		r := []rune(s)
		s = string(r[:previewWidth-3]) + "..."
	}

	return s
}

// listBindings renders the session variables sorted by name, one per line.
func listBindings(env *lang.Environment) string {
	if env.Len() == 0 {
		return hintStyle.Render("no session variables")
	}

	names := env.Names()
	slices.Sort(names)

	width := 0

	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder

	for i, name := range names {
		v, _ := env.Get(name)

		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "  %s  %s %s",
			suggestionStyle.Render(fmt.Sprintf("%-*s", width, name)),
			preview(v),
			hintStyle.Render(v.Type.String()))
	}

	return b.String()
}

// listFunctions renders the signatures of registered functions whose names
// contain any of the given filters (all functions without filters).
func listFunctions(reg *lang.Registry, filters []string) string {
	var b strings.Builder

	for _, name := range reg.Names() {
		if len(filters) > 0 && !slices.ContainsFunc(filters, func(f string) bool {
			return strings.Contains(name, f) || reg.Group(name) == f
		}) {
			continue
		}

		fn, _ := reg.Resolve(name)

		if b.Len() > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "  %s  %s",
			signatureNameStyle.Render(fn.Signature()),
			hintStyle.Render(fn.Doc))
	}

	if b.Len() == 0 {
		return hintStyle.Render("no matching functions")
	}

	return b.String()
}
