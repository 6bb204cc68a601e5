package cli

import (
	"context"
	"time"

	"github.com/alecthomas/kong"

	"github.com/fireproofsocks/dotenvy/cli/cmd"
	"github.com/fireproofsocks/dotenvy/cli/cmd/browse"
	"github.com/fireproofsocks/dotenvy/log"
	"github.com/fireproofsocks/dotenvy/pkg"
	"github.com/fireproofsocks/dotenvy/shell"
)

// CLI is the top-level command-line interface for dotenvy.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	File     []string `default:".env" help:"Definition file(s) or '-' for stdin" name:"file" short:"f"`
	Optional bool     `               help:"Ignore missing definition files"`
	OSEnv    bool     `               help:"Seed definitions with the process environment"     name:"os-env"`

	NoSubst bool          `              help:"Disable command substitution"                   name:"no-subst"`
	Allow   []string      `              help:"Restrict command substitution to named programs"`
	Timeout time.Duration `default:"10s" help:"Time limit for each substituted command"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Exec   cmd.Exec      `cmd:"" help:"Run a command with the resolved environment"`
	Check  cmd.Check     `cmd:"" help:"Assert properties of the resolved environment"`
	Browse browse.Browse `cmd:"" help:"Interactively browse the resolved environment"`

	Print cmd.Print `cmd:"" default:"1" help:"Print the resolved environment"`
}

// Run executes the dotenvy CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSources(ctx, cmd.Sources{
		Files:    cli.File,
		Optional: cli.Optional,
		OSEnv:    cli.OSEnv,
	})
	ctx = cmd.WithExecutor(ctx, shell.New(
		shell.WithDisabled(cli.NoSubst),
		shell.WithAllow(cli.Allow...),
		shell.WithTimeout(cli.Timeout),
		shell.WithLogger(log.Default()),
	))

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
