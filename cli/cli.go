package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/cli/cmd"
	"github.com/ardnew/formula/engine"
	"github.com/ardnew/formula/pkg"
)

// ConfigFile is the base name of the YAML configuration file in the
// configuration directory. A JSON file of the same stem is also read.
const ConfigFile = "config.yaml"

// dirMode is the permission mode of created runtime directories.
const dirMode os.FileMode = 0o700

// CLI is the top-level command-line interface for formula.
type CLI struct {
	Log    logConfig    `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig  `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine engineConfig `embed:"" group:"engine"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`
	Source  []string         `help:"Formula source file(s) or '-' for stdin" name:"source" short:"s" type:"existingfile"`

	Init  cmd.Init  `cmd:"" help:"Write the current flags to the configuration file"`
	Fmt   cmd.Fmt   `cmd:"" help:"Format a formula"`
	Funcs cmd.Funcs `cmd:"" help:"List available functions"`
	Repl  cmd.Repl  `cmd:"" help:"Start an interactive session"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate a formula"`
}

// Run executes the formula CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when kong
// terminates early (help, version or usage errors).
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, args, kong.Exit(exit))
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return pkg.ErrCreateDir.Wrap(err)
		}
	}

	return nil
}

func run(ctx context.Context, args []string, opts ...kong.Option) (err error) {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configPath := filepath.Join(pkg.ConfigDir(), ConfigFile)
	jsonPath := configPath[:len(configPath)-len(filepath.Ext(configPath))] + ".json"

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configPath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Engine.vars())

	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	// Configure the logger before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, append([]kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.ExplicitGroups([]kong.Group{
			cli.Log.group(),
			cli.Pprof.group(),
			cli.Engine.group(),
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, jsonPath),
		kong.Configuration(resolveYAML, configPath),
		vars,
	}, opts...)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	var closer io.Closer

	// The engine, and with it the records database, is only opened by
	// commands that evaluate formulas.
	open := sync.OnceValues(func() (*engine.Engine, error) {
		eng, c, err := cli.Engine.open(ctx)
		closer = c

		return eng, err
	})

	defer func() {
		if closer == nil {
			return
		}

		if cerr := closer.Close(); cerr != nil {
			err = pkg.MakeError(err, pkg.ErrRelease.Wrap(cerr))
		}
	}()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)
	ctx = cmd.WithEngine(ctx, func(context.Context) (*engine.Engine, error) {
		return open()
	})

	ktx.BindTo(ctx, (*context.Context)(nil))

	return ktx.Run()
}
