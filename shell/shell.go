// Package shell provides the default command executor used for $(...)
// substitution. It shells out to the operating system through os/exec,
// capturing standard output and the process exit status.
//
// The executor is a deliberate dependency-injection seam: restrictive
// deployments can allow-list commands or disable execution entirely, and
// tests can substitute deterministic fakes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/fireproofsocks/dotenvy/log"
)

// Predefined errors (sentinel values).
var (
	// ErrDisabled is returned when command substitution has been disabled.
	ErrDisabled = errors.New("shell: command substitution disabled")

	// ErrNotAllowed is returned when a command is not on the allow-list.
	ErrNotAllowed = errors.New("shell: command not allowed")
)

// Shell executes commands on the host operating system, capturing their
// standard output and exit status. The zero value is usable and runs
// commands unrestricted in the current working directory.
type Shell struct {
	dir      string
	env      []string
	timeout  time.Duration
	allow    map[string]struct{}
	disabled bool
	logger   log.Logger
}

// Option applies a configuration option to a Shell.
type Option func(*Shell)

// New creates a Shell with the provided options applied.
func New(opts ...Option) *Shell {
	s := new(Shell)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Disabled returns a Shell that rejects every command. It is intended for
// restrictive deployments and for parsing untrusted documents.
func Disabled() *Shell {
	return New(WithDisabled(true))
}

// WithDir sets the working directory commands run in.
func WithDir(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

// WithEnv sets the environment (as "KEY=VALUE" entries) commands run with.
// When unset, commands inherit the process environment.
func WithEnv(env []string) Option {
	return func(s *Shell) { s.env = env }
}

// WithTimeout bounds the execution time of each command. Zero means no
// limit beyond what the caller's context imposes.
func WithTimeout(d time.Duration) Option {
	return func(s *Shell) { s.timeout = d }
}

// WithAllow restricts execution to the named commands. An empty list
// leaves execution unrestricted.
func WithAllow(names ...string) Option {
	return func(s *Shell) {
		if len(names) == 0 {
			return
		}

		if s.allow == nil {
			s.allow = make(map[string]struct{}, len(names))
		}

		for _, name := range names {
			s.allow[name] = struct{}{}
		}
	}
}

// WithDisabled controls whether every command is rejected.
func WithDisabled(disabled bool) Option {
	return func(s *Shell) { s.disabled = disabled }
}

// WithLogger sets the logger used for execution diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// Exec runs the named command with the given arguments and returns its
// captured standard output and exit status.
//
// A command that starts but exits non-zero is not an error here: the exit
// status is returned with a nil error, and the caller decides how to treat
// it. The returned error is reserved for commands that cannot run at all
// (rejected, not found, killed by the context deadline).
func (s *Shell) Exec(
	ctx context.Context,
	name string,
	args ...string,
) (string, int, error) {
	if s.disabled {
		return "", -1, ErrDisabled
	}

	if s.allow != nil {
		if _, ok := s.allow[name]; !ok {
			return "", -1, ErrNotAllowed
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.dir
	cmd.Env = s.env

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.TraceContext(ctx, "exec command",
		slog.String("name", name),
		slog.Int("arg_count", len(args)),
	)

	err := cmd.Run()
	if err != nil {
		// A context kill also surfaces as an ExitError, but it is a
		// failure to run, not a command exit status.
		if ctx.Err() != nil {
			return "", -1, ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			s.logger.DebugContext(ctx, "command exited non-zero",
				slog.String("name", name),
				slog.Int("status", exitErr.ExitCode()),
				slog.String("stderr", stderr.String()),
			)

			return stdout.String(), exitErr.ExitCode(), nil
		}

		return "", -1, err
	}

	return stdout.String(), 0, nil
}
