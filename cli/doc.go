// Package cli contains the command line interface for formula.
//
// # Usage
//
//	formula '2 + 3 * 4'
//	formula -e 'price * (1 + taxRate / 100)' price=100 taxRate=20
//	formula --convert USD EUR 100
//	formula -s rates.formula -o json
//	formula fmt ast - < rates.formula
//	formula repl
//
// # Configuration
//
// Flags may be set in config.yaml (or config.json) in the user configuration
// directory, for example ~/.config/formula/config.yaml. The init command
// writes the effective flags there:
//
//	formula --log-level debug --rates-timeout 5s init
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, ...)
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize text output
//
// # Engine Options
//
//   - --rates-url, --rates-timeout: exchange-rate provider
//   - --records-db: SQLite database of user records (sample data if unset)
//   - --constant NAME=VALUE: numeric constant visible to every formula
//   - --max-depth: maximum expression nesting
//   - --[no-]cache: reuse compiled formulas
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag; see the
// profile package.
package cli
