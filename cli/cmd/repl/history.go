package repl

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

// HistoryFile is the base name of the history file in the cache directory.
const HistoryFile = "history.utf8"

// MaxHistory is the number of entries kept. Older entries are dropped from
// memory and from the file.
const MaxHistory = 1000

// HistoryEntry is a single line of history and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// modeTags prefix each line of the history file.
var modeTags = [...]string{modeEval: "E:", modeCtrl: "C:"}

func (e HistoryEntry) String() string { return modeTags[e.Mode] + e.Line }

func parseEntry(line string) HistoryEntry {
	for mode, tag := range modeTags {
		if s, ok := strings.CutPrefix(line, tag); ok {
			return HistoryEntry{Line: s, Mode: inputMode(mode)}
		}
	}

	return HistoryEntry{Line: line, Mode: modeEval}
}

// History is the list of submitted lines, oldest first, mirrored to a file
// with one tagged entry per line. An empty path keeps it in memory.
type History struct {
	mu      sync.RWMutex
	path    string
	entries []HistoryEntry
}

// NewHistory creates a History persisted at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those in the history file. A missing file
// is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	var entries []HistoryEntry

	for line := range strings.Lines(string(data)) {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, parseEntry(line))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = entries

	return nil
}

// WriteWithMode records line and returns the number of bytes written to the
// file. Repeating the newest entry is a no-op, and an older copy of the same
// entry moves to the end.
func (h *History) WriteWithMode(line string, mode inputMode) (int, error) {
	e := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return 0, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return 0, nil
	}

	moved := false
	if i := slices.Index(h.entries, e); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		moved = true
	}

	h.entries = append(h.entries, e)

	trimmed := len(h.entries) > MaxHistory
	if trimmed {
		h.entries = slices.Clone(h.entries[len(h.entries)-MaxHistory:])
	}

	switch {
	case h.path == "":
		return len(e.Line), nil

	case moved || trimmed:
		return h.flush()
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.WriteString(e.String() + "\n")
}

// flush rewrites the history file. h.mu must be held.
func (h *History) flush() (int, error) {
	var b strings.Builder

	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	return b.Len(), os.WriteFile(h.path, []byte(b.String()), 0o600)
}

// GetEntry returns entry i; 0 is the oldest.
func (h *History) GetEntry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Find returns the first entry in mode after index from, moving by step.
func (h *History) Find(from, step int, mode inputMode) (int, HistoryEntry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := from + step; i >= 0 && i < len(h.entries); i += step {
		if h.entries[i].Mode == mode {
			return i, h.entries[i], true
		}
	}

	return 0, HistoryEntry{}, false
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}
