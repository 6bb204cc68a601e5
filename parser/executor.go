package parser

import "context"

// Executor runs a command on behalf of $(...) substitution and returns
// its captured output and exit status.
//
// The engine imposes no timeout of its own: cancellation and deadlines
// are the executor's responsibility (typically via the supplied context).
// The default implementation is [github.com/fireproofsocks/dotenvy/shell].
type Executor interface {
	Exec(
		ctx context.Context,
		name string,
		args ...string,
	) (output string, status int, err error)
}

// ExecFunc adapts an ordinary function to the [Executor] interface.
type ExecFunc func(
	ctx context.Context,
	name string,
	args ...string,
) (string, int, error)

// Exec implements [Executor].
func (f ExecFunc) Exec(
	ctx context.Context,
	name string,
	args ...string,
) (string, int, error) {
	return f(ctx, name, args...)
}
