package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// stdinSource names standard input as a source.
const stdinSource = "-"

// Sources are formula source files read as one program, in the order they
// were named. Paths naming the same file are read once, and standard input
// is read once after every file no matter where "-" appears.
type Sources struct {
	paths []string
	stdin bool
	in    io.Reader
}

// NewSources resolves the source paths. A path that cannot be examined is
// kept so that opening it reports the failure.
func NewSources(paths []string) Sources {
	s := Sources{in: os.Stdin}

	stdinInfo, _ := os.Stdin.Stat()

	var seen []os.FileInfo

	for _, path := range paths {
		if path == stdinSource {
			s.stdin = true

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			s.paths = append(s.paths, path)

			continue
		}

		if stdinInfo != nil && os.SameFile(info, stdinInfo) {
			s.stdin = true

			continue
		}

		if slices.ContainsFunc(seen, func(fi os.FileInfo) bool { return os.SameFile(fi, info) }) {
			continue
		}

		seen = append(seen, info)
		s.paths = append(s.paths, path)
	}

	return s
}

// IsZero reports whether there is nothing to read.
func (s Sources) IsZero() bool { return len(s.paths) == 0 && !s.stdin }

// Names returns the sources in reading order.
func (s Sources) Names() []string {
	names := slices.Clone(s.paths)
	if s.stdin {
		names = append(names, stdinSource)
	}

	return names
}

// Open opens every source and returns a reader over their contents. A
// newline separates consecutive sources so that the last statement of one
// file never runs into the first of the next.
func (s Sources) Open() (io.ReadCloser, error) {
	var (
		readers []io.Reader
		files   multiCloser
	)

	for _, path := range s.paths {
		f, err := os.Open(path)
		if err != nil {
			_ = files.Close()

			return nil, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		if len(readers) > 0 {
			readers = append(readers, strings.NewReader("\n"))
		}

		files = append(files, f)
		readers = append(readers, f)
	}

	if s.stdin {
		if len(readers) > 0 {
			readers = append(readers, strings.NewReader("\n"))
		}

		readers = append(readers, s.in)
	}

	return struct {
		io.Reader
		io.Closer
	}{io.MultiReader(readers...), files}, nil
}

// ReadAll returns the concatenated contents of every source.
func (s Sources) ReadAll() (string, error) {
	r, err := s.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", ErrReadSource.Wrap(err)
	}

	return b.String(), nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error

	for _, c := range m {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

type sourcesKey struct{}

// WithSourceFiles returns a new context.Context carrying the formula source
// files named on the command line.
func WithSourceFiles(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, sourcesKey{}, NewSources(paths))
}

// sourcesFrom returns the sources stored by WithSourceFiles, if any.
func sourcesFrom(ctx context.Context) (Sources, bool) {
	s, ok := ctx.Value(sourcesKey{}).(Sources)

	return s, ok && !s.IsZero()
}

// open returns a reader for one source file, or stdin for "-".
func open(source string) (io.ReadCloser, error) {
	return NewSources([]string{source}).Open()
}
