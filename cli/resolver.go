package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/fireproofsocks/dotenvy/parser"
	"github.com/fireproofsocks/dotenvy/shell"
)

// resolve is a [kong.ConfigurationLoader] that parses config files written
// in the same definition-file format the tool itself consumes.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config")
//
// Flag names are converted as follows:
//   - Flag names with hyphens (e.g., "log-level") map to upper-snake-case
//     keys in the config file (e.g., "LOG_LEVEL")
//   - String values may be quoted using any of the definition-file forms
//   - Boolean values are true or false
//   - Numbers are written as plain values
//
// Example config file:
//
//	LOG_LEVEL=debug
//	LOG_FORMAT=text
//	LOG_PRETTY=true
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-format=text
//	--log-pretty=true
//
// Command-line flags override config file values. Command substitution is
// disabled while reading the config file, so any file using $(...) is
// rejected and treated as empty.
func resolve(r io.Reader) (kong.Resolver, error) {
	vars, err := parser.ParseReader(
		context.Background(),
		r,
		parser.WithExecutor(shell.Disabled()),
	)
	if err != nil {
		// Parse error - return empty config
		return config{}, nil
	}

	return config(vars), nil
}

// config implements [kong.Resolver] for definition-file configs.
type config map[string]string

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but config keys use
	// upper-snake-case identifiers (e.g., "LOG_LEVEL").
	name := strings.ToUpper(strings.ReplaceAll(flag.Name, "-", "_"))

	if value, ok := r[name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
