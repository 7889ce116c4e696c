package cmd

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/formula/cli/cmd/repl"
	"github.com/ardnew/formula/log"
)

// Repl starts an interactive session. Definitions in the --source files are
// loaded into the session first.
type Repl struct {
	NoHistory bool `help:"Do not read or record input history" name:"no-history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng, err := engineFrom(ctx)
	if err != nil {
		return err
	}

	var history string

	if ktx := kongContextFrom(ctx); !r.NoHistory && ktx != nil {
		if dir := ktx.Model.Vars()[CacheIdentifier]; dir != "" {
			history = filepath.Join(dir, repl.HistoryFile)
		}
	}

	var prelude io.Reader

	if src, ok := sourcesFrom(ctx); ok {
		r, err := src.Open()
		if err != nil {
			return err
		}
		defer r.Close()

		prelude = r
	}

	log.DebugContext(ctx, "repl",
		slog.String("history", history),
		slog.Bool("prelude", prelude != nil))

	return repl.Run(ctx, eng, prelude, history, log.Default().Named("repl"))
}
