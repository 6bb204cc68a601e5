// Package parser implements a single-pass scanner for dotenv-style
// environment definition documents, converting raw text into a map from
// variable name to fully resolved string value.
//
// # Grammar
//
// Informal EBNF:
//
//	Document  → (Pair | Comment | Blank)* EOF
//	Pair      → ["export"] Key '=' Value
//	Key       → [A-Za-z_][A-Za-z0-9_]*
//	Value     → Unquoted | Single | Double | Heredoc
//	Single    → "'" literal "'"
//	Double    → '"' interpolated '"'
//	Heredoc   → `"""` NL interpolated NL `"""`
//	          | `'''` NL literal NL `'''`
//	Comment   → '#' text NL
//
// Unquoted values are trimmed of surrounding whitespace and end at a
// newline or an unquoted '#'. Heredoc delimiters must be trailed only by
// whitespace on their own line; closing delimiters additionally permit a
// trailing comment.
//
// # Expansion
//
// Inside interpolating contexts (unquoted, double-quoted, and triple-double
// heredoc values) the scanner resolves, left to right and in one pass:
//
//   - ${NAME}: substitution of a previously resolved or seeded variable.
//     An undefined name fails the parse; the spliced text is never
//     re-scanned.
//   - $(cmd args...): command substitution through the injected
//     [Executor]; the trimmed captured output is spliced in. A non-zero
//     exit status fails the parse.
//   - Escape sequences \n \r \t \f \b \" \' \\ and \uXXXX (exactly four
//     hex digits). An unrecognized escape drops the backslash and keeps
//     the character.
//
// Single-quoted and triple-single heredoc values are literal: no escapes,
// no interpolation, no command substitution.
//
// # Failure model
//
// Every failure aborts the parse atomically and is returned as a *Error
// carrying the offending key, the raw fragment, and the expected
// terminator as structured attributes. No partial result is ever
// returned.
//
// The scanner holds no global state: concurrent Parse calls are safe
// provided each receives its own seed map and executor.
package parser
