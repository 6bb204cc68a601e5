// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("sourcing complete", slog.Int("count", n))
//	logger.Error("parse failed", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithCaller(true))
//
// A zero-value Logger is valid and discards all messages, so library code
// can log unconditionally without nil checks.
//
// # Supported Levels
//
// The package supports five log levels: [LevelTrace], [LevelDebug],
// [LevelInfo], [LevelWarn], and [LevelError]. Trace sits below slog's
// Debug and is used for per-character scanner diagnostics.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and
// [FormatText], each with an optional colorized pretty variant.
package log
