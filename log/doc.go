// Package log is the structured logger shared by the formula packages. It
// wraps [log/slog] with a fixed set of options and a [LevelTrace] below
// debug for per-evaluation detail.
//
// Loggers are values. Options are applied when a Logger is made, and
// [Logger.Wrap] derives a reconfigured copy that keeps the attributes added
// with [Logger.With]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithPretty(false))
//
//	eng := logger.Named("engine")
//	eng.DebugContext(ctx, "compiled", slog.String("key", key))
//
// The zero Logger discards every record. Packages that take a Logger option
// (engine, currency, store, lang) therefore log nothing unless one is given.
//
// The package functions log with [Default], which the command line
// reconfigures with [Config] from its --log-* flags.
//
// # Pretty output
//
// With [WithPretty], which is the default, records are colorized when the
// output is a terminal and written without quotes. In JSON format each field
// goes on its own line. Turn it off for machine-readable logs.
//
// # Timestamps
//
// [WithTimeLayout] accepts a [time] layout name such as "RFC3339" or
// "kitchen", one of the short names "ms", "us" and "ns" for the stamp
// layouts, or a literal layout. "none" or a blank layout omits timestamps.
package log
