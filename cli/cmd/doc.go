// Package cmd implements the formula subcommands: eval (the default), fmt,
// funcs, init and repl.
//
// Commands receive their configuration through the context built by the cli
// package: the parsed [kong.Context], the source files named with --source,
// and an [EngineFunc] constructing the evaluation engine on first use.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
