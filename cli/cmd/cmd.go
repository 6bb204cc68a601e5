package cmd

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/fireproofsocks/dotenvy/env"
	"github.com/fireproofsocks/dotenvy/log"
	"github.com/fireproofsocks/dotenvy/parser"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Sources identifies the definition files a command resolves before it
// runs, along with the options controlling how they load.
type Sources struct {
	// Files is the ordered list of definition file paths. The special
	// name "-" reads from stdin.
	Files []string

	// Optional ignores definition files that do not exist.
	Optional bool

	// OSEnv seeds the environment with the process environment before
	// any definition file is parsed.
	OSEnv bool
}

type sourcesKey struct{}

// WithSources returns a new context.Context carrying the definition file
// sources shared by all commands.
func WithSources(ctx context.Context, srcs Sources) context.Context {
	return context.WithValue(ctx, sourcesKey{}, srcs)
}

func sourcesFrom(ctx context.Context) Sources {
	srcs, _ := ctx.Value(sourcesKey{}).(Sources)

	return srcs
}

type executorKey struct{}

// WithExecutor returns a new context.Context carrying the command
// substitution executor shared by all commands.
func WithExecutor(ctx context.Context, exec parser.Executor) context.Context {
	return context.WithValue(ctx, executorKey{}, exec)
}

func executorFrom(ctx context.Context) parser.Executor {
	exec, _ := ctx.Value(executorKey{}).(parser.Executor)

	return exec
}

// Load resolves the definition files carried by ctx into a single merged
// environment. Files are merged in order, with later files overriding
// earlier ones. A file named "-" reads from stdin, at most once.
func Load(ctx context.Context) (*env.Env, error) {
	srcs := sourcesFrom(ctx)

	sources := make([]env.Source, 0, len(srcs.Files)+1)

	if srcs.OSEnv {
		sources = append(sources, env.OSEnv())
	}

	stdin := false

	for _, path := range srcs.Files {
		switch {
		case path == stdinSource:
			if stdin {
				continue
			}

			stdin = true

			sources = append(sources, env.Reader(os.Stdin))

		case srcs.Optional:
			sources = append(sources, env.Optional(path))

		default:
			sources = append(sources, env.File(path))
		}
	}

	loader := env.NewLoader(
		env.WithLogger(log.Default()),
		env.WithExecutor(executorFrom(ctx)),
	)

	e, err := loader.Load(ctx, sources...)
	if err != nil {
		return nil, ErrLoadEnvironment.Wrap(err)
	}

	return e, nil
}
