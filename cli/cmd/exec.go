package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/ardnew/mung"

	"github.com/fireproofsocks/dotenvy/env"
	"github.com/fireproofsocks/dotenvy/log"
)

// Exec runs a command with the resolved environment. The resolved variables
// override any inherited process variables of the same name.
type Exec struct {
	PathPrefix []string `help:"Prepend directories to PATH in the child environment" name:"path-prefix" type:"existingdir"`
	Pristine   bool     `help:"Do not inherit the process environment"`

	Argv []string `arg:"" help:"Command and arguments" name:"argv" passthrough:""`
}

// Run executes the exec command.
func (x *Exec) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	if len(x.Argv) == 0 {
		return ErrMissingCommand
	}

	e, err := Load(ctx)
	if err != nil {
		return err
	}

	environ := x.environ(e)

	log.DebugContext(ctx, "exec",
		slog.String("command", x.Argv[0]),
		slog.Int("argc", len(x.Argv)-1),
		slog.Int("environ_count", len(environ)),
	)

	child := osexec.CommandContext(ctx, x.Argv[0], x.Argv[1:]...)
	child.Env = environ
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	err = child.Run()
	if err != nil {
		var exit *osexec.ExitError
		if errors.As(err, &exit) {
			// Propagate the child's exit code.
			if ktx := kongContextFrom(ctx); ktx != nil {
				ktx.Kong.Exit(exit.ExitCode())
			}
		}

		return ErrRunCommand.Wrap(err).
			With(slog.String("command", x.Argv[0]))
	}

	return nil
}

// environ builds the child environment: the inherited process environment
// (unless pristine) overlaid with the resolved variables, with any PATH
// prefixes applied last.
func (x *Exec) environ(e *env.Env) []string {
	vars := make(map[string]string)

	if !x.Pristine {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if ok {
				vars[key] = value
			}
		}
	}

	for key, value := range e.Map() {
		vars[key] = value
	}

	if len(x.PathPrefix) > 0 {
		vars["PATH"] = mung.Make(
			mung.WithSubjectItems(vars["PATH"]),
			mung.WithDelim(string(os.PathListSeparator)),
			mung.WithPrefixItems(x.PathPrefix...),
		).String()
	}

	environ := make([]string, 0, len(vars))
	for key, value := range vars {
		environ = append(environ, key+"="+value)
	}

	return environ
}
