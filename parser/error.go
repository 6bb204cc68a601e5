package parser

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput      = NewError("failed to read input")
	ErrMissingValue   = NewError("variable missing value")
	ErrInvalidName    = NewError("invalid variable name syntax")
	ErrMissingAssign  = NewError("no equals sign for key")
	ErrQuotePrefix    = NewError("improper syntax before opening quote")
	ErrHeredocPrefix  = NewError("improper syntax before opening heredoc")
	ErrHeredocOpener  = NewError("only whitespace allowed after heredoc delimiter")
	ErrAfterTerminator = NewError("invalid syntax following terminator")
	ErrStopNotFound   = NewError("stop sequence not found")
	ErrUndefinedVar   = NewError("could not interpolate variable: variable undefined")
	ErrEmptyCommand   = NewError("missing arguments; command cannot be empty")
	ErrCommandExit    = NewError("command exited with non-zero status")
	ErrCommandFailed  = NewError("command execution failed")
	ErrInvalidUnicode = NewError("invalid unicode escape format")
	ErrNoExecutor     = NewError("no command executor configured")
)

// Error represents a parse failure with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
//
// The attributes carry the offending key, the raw fragment that triggered
// the failure, and the expected terminator where one applies. They are
// rendered into Error() so a bare error string is enough to locate the
// problem in the source document.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	//
	// Attributes, if any, are appended as " (k=v, ...)".
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	msg := strings.Join(part, ": ")

	if len(e.attrs) == 0 {
		return msg
	}

	var sb strings.Builder

	sb.WriteString(msg)
	sb.WriteString(" (")

	for i, a := range e.attrs {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value.Resolve().String())
	}

	sb.WriteByte(')')

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e shares its base message with target, so that
// errors.Is(err, ErrStopNotFound) matches attributed copies of the
// sentinel.
func (e *Error) Is(target error) bool {
	te := &Error{}
	if errors.As(target, &te) {
		return e.msg == te.msg
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// WithPosition adds line and column attributes to the error.
func (e *Error) WithPosition(pos Position) *Error {
	return e.With(
		slog.Int("line", pos.Line),
		slog.Int("column", pos.Column),
	)
}

// Position identifies a location in the input document.
type Position struct {
	Offset int // byte offset from the start of input
	Line   int // 1-based line number
	Column int // 1-based column number in runes
}
