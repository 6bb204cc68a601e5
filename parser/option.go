package parser

import (
	"maps"

	"github.com/fireproofsocks/dotenvy/log"
)

// Option applies a configuration option to one parse call.
type Option func(*parser)

// WithSeed pre-populates the result map with already-known variables,
// making them available to ${NAME} interpolation. The supplied map is
// copied and never mutated.
func WithSeed(seed map[string]string) Option {
	return func(p *parser) {
		maps.Copy(p.vars, seed)
	}
}

// WithExecutor sets the command executor used for $(...) substitution.
// When unset, a default [shell] executor is used.
func WithExecutor(exec Executor) Option {
	return func(p *parser) {
		p.exec = exec
	}
}

// WithLogger sets the logger used for scanner diagnostics. The zero
// logger discards all messages.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) {
		p.logger = logger
	}
}
