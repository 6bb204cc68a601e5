// Package cli contains the command line interface for dotenvy.
//
// # Usage
//
// The CLI resolves one or more environment definition files into a single
// environment and hands the result to a subcommand:
//
//	dotenvy --file .env --file .env.local print
//	dotenvy --file .env exec -- make test
//	dotenvy --file .env check 'env.PORT != ""'
//	dotenvy --file .env browse
//
// Definition files are merged in the order given, with later files
// overriding earlier ones. The special name "-" reads from stdin.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Command Substitution Options
//
// Definition files may invoke external commands with $(...). These flags
// constrain that behavior:
//
//   - --no-subst: Fail any definition file that uses command substitution
//   - --allow: Restrict substitution to the named programs
//   - --timeout: Time limit for each substituted command
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Configuration File
//
// Default flag values may be stored in a configuration file written in the
// same definition-file format the tool parses. Flag names map to
// upper-snake-case keys:
//
//	LOG_LEVEL=debug
//	LOG_FORMAT=text
//	NO_SUBST=true
//
// Command-line flags override configuration file values. Command
// substitution is never performed while reading the configuration file.
package cli
