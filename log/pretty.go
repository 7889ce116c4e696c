package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles are bound to a
// renderer for the handler's writer, so output that is not a terminal is
// written without escape sequences.
type palette struct {
	key, text, number, duration, timestamp, null lipgloss.Style
	yes, no                                      lipgloss.Style
	trace, debug, info, warn, fail               lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:       fg("8"),
		text:      fg("6"),
		number:    fg("3"),
		duration:  fg("5"),
		timestamp: fg("4"),
		null:      fg("8"),
		yes:       fg("2"),
		no:        fg("1"),
		trace:     fg("8"),
		debug:     fg("4"),
		info:      fg("2"),
		warn:      fg("3").Bold(true),
		fail:      fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.fail

	case l >= slog.LevelWarn:
		return p.warn

	case l >= slog.LevelInfo:
		return p.info

	case l >= slog.LevelDebug:
		return p.debug

	default:
		return p.trace
	}
}

// field is one flattened attribute of a record. Keys of grouped attributes
// are joined with dots.
type field struct {
	key   string
	value slog.Value
	style *lipgloss.Style
}

// prettyHandler writes records for a human reader, either on one line as
// key=value pairs or, in JSON mode, as a brace-delimited block with one
// field per line. Values are never quoted.
type prettyHandler struct {
	opts   slog.HandlerOptions
	json   bool
	pal    *palette
	mu     *sync.Mutex
	w      io.Writer
	fields []field // from WithAttrs, already qualified
	groups []string
}

func newPrettyHandler(w io.Writer, json bool, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		json: json,
		pal:  newPalette(w),
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.fields = slices.Clip(h.fields)

	for _, a := range attrs {
		c.fields = flatten(c.fields, h.prefix(), a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) prefix() string { return strings.Join(h.groups, ".") }

// builtin appends a record attribute after passing it through ReplaceAttr.
func (h *prettyHandler) builtin(fields []field, a slog.Attr, style *lipgloss.Style) []field {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: a.Key, value: a.Value.Resolve(), style: style})
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.fields)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time), &h.pal.timestamp)
	}

	lvl := h.pal.level(r.Level)
	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level), &lvl)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			loc := filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
			fields = h.builtin(fields, slog.String(slog.SourceKey, loc), nil)
		}
	}

	fields = h.builtin(fields, slog.String(slog.MessageKey, r.Message), nil)
	fields = append(fields, h.fields...)

	prefix := h.prefix()

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		h.writeBlock(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.render(f))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeBlock(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(f.key))
		buf.WriteString(": ")
		buf.WriteString(h.render(f))
	}

	buf.WriteString("\n}\n")
}

// flatten appends a, qualified by prefix, expanding groups into one field
// per member. Empty attributes are dropped.
func flatten(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if v.Kind() == slog.KindGroup {
		for _, m := range v.Group() {
			fields = flatten(fields, key, m)
		}

		return fields
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: key, value: v})
}

func (h *prettyHandler) render(f field) string {
	p, v := h.pal, f.value

	if f.style != nil {
		return f.style.Render(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		return p.text.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return p.number.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.duration.Render(v.Duration().String())

	case slog.KindTime:
		return p.timestamp.Render(v.Time().Format(time.RFC3339))
	}

	switch x := v.Any().(type) {
	case nil:
		return p.null.Render("null")

	case error:
		return p.no.Render(x.Error())

	case fmt.Stringer:
		return p.text.Render(x.String())

	default:
		return p.text.Render(fmt.Sprint(x))
	}
}
