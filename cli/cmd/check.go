package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Check evaluates boolean assertions against the resolved environment.
// Each assertion is an expr-lang expression with the merged variables bound
// to the identifier "env":
//
//	dotenvy check 'env.PORT != ""' 'int(env.PORT) > 1024'
//
// Check exits successfully only when every assertion holds.
type Check struct {
	Assert []string `arg:"" help:"Boolean expressions evaluated against the environment" name:"assert"`

	Quiet bool `help:"Suppress per-assertion results" short:"q"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	e, err := Load(ctx)
	if err != nil {
		return err
	}

	exprEnv := map[string]any{"env": e.Map()}

	failed := 0

	for _, source := range c.Assert {
		program, err := expr.Compile(source,
			expr.Env(exprEnv),
			expr.AsBool(),
		)
		if err != nil {
			return ErrCompileAssert.Wrap(err).
				With(slog.String("source", source))
		}

		result, err := vm.Run(program, exprEnv)
		if err != nil {
			return ErrAssertFailed.Wrap(err).
				With(slog.String("source", source))
		}

		ok, _ := result.(bool)
		if !ok {
			failed++
		}

		if !c.Quiet {
			status := "ok"
			if !ok {
				status = "FAIL"
			}

			fmt.Fprintf(os.Stdout, "%-4s  %s\n", status, source)
		}
	}

	if failed > 0 {
		return ErrAssertFailed.
			With(
				slog.Int("failed", failed),
				slog.Int("total", len(c.Assert)),
			)
	}

	return nil
}
