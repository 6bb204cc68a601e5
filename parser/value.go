package parser

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// valueContext carries the immutable per-value scan configuration: the
// key being resolved, the required closing delimiter, and whether
// interpolation, command substitution, and escapes are honored.
type valueContext struct {
	key         string
	terminator  string // "", `"`, `'`, `"""`, or `'''`
	interpolate bool
}

// scanValue consumes and transforms characters into the final string
// value for key, honoring quoting, escaping, interpolation, and command
// substitution.
func (p *parser) scanValue(ctx context.Context, key string) (string, error) {
	vc := valueContext{key: key, interpolate: true}

	var acc strings.Builder

	for {
		if p.eof() {
			if vc.terminator != "" {
				return "", ErrStopNotFound.WithPosition(p.position()).With(
					slog.String("key", vc.key),
					slog.String("terminator", vc.terminator),
				)
			}

			return strings.TrimSpace(acc.String()), nil
		}

		ch := p.peek()

		// Escapes are handled before the terminator so \" cannot close
		// a double-quoted value.
		if ch == '\\' && vc.interpolate {
			s, err := p.scanEscape(vc)
			if err != nil {
				return "", err
			}

			acc.WriteString(s)

			continue
		}

		if vc.terminator != "" && p.hasPrefix(vc.terminator) {
			p.advanceN(len(vc.terminator))

			err := p.requireClearToEOL(vc)
			if err != nil {
				return "", err
			}

			// Quoted and heredoc content is committed verbatim.
			return acc.String(), nil
		}

		if vc.interpolate && p.hasPrefix("${") {
			s, err := p.scanInterpolation(vc)
			if err != nil {
				return "", err
			}

			acc.WriteString(s)

			continue
		}

		if vc.interpolate && p.hasPrefix("$(") {
			s, err := p.scanCommand(ctx, vc)
			if err != nil {
				return "", err
			}

			acc.WriteString(s)

			continue
		}

		if vc.terminator == "" && (ch == '"' || ch == '\'') {
			err := p.openQuote(&vc, &acc)
			if err != nil {
				return "", err
			}

			continue
		}

		if vc.terminator == "" && ch == '\n' {
			p.advance()

			return strings.TrimSpace(acc.String()), nil
		}

		if vc.terminator == "" && ch == '#' {
			// A '#' outside quotes starts a trailing comment and ends
			// the value, whether or not whitespace precedes it.
			p.skipComment()

			return strings.TrimSpace(acc.String()), nil
		}

		acc.WriteRune(ch)
		p.advance()
	}
}

// openQuote establishes the value's terminator from an opening quote or
// heredoc delimiter. Only legal while no terminator is set and nothing
// but whitespace has accumulated for this value.
func (p *parser) openQuote(vc *valueContext, acc *strings.Builder) error {
	quote := string(p.peek())
	delim := quote + quote + quote
	triple := p.hasPrefix(delim)

	if leftover := strings.TrimSpace(acc.String()); leftover != "" {
		err := ErrQuotePrefix
		if triple {
			err = ErrHeredocPrefix
		}

		return err.WithPosition(p.position()).With(
			slog.String("key", vc.key),
			slog.String("fragment", leftover),
		)
	}

	if triple {
		p.advanceN(len(delim))

		err := p.requireBlankOpenerLine(vc, delim)
		if err != nil {
			return err
		}

		vc.terminator = delim
	} else {
		p.advance()

		vc.terminator = quote
	}

	vc.interpolate = quote == `"`

	acc.Reset()

	return nil
}

// requireBlankOpenerLine enforces that nothing but whitespace follows an
// opening heredoc delimiter on its line. The line terminator is consumed
// so the heredoc body starts on the next line.
func (p *parser) requireBlankOpenerLine(vc *valueContext, delim string) error {
	for !p.eof() {
		ch := p.peek()

		if ch == '\n' {
			p.advance()

			return nil
		}

		if !unicode.IsSpace(ch) {
			return ErrHeredocOpener.WithPosition(p.position()).With(
				slog.String("key", vc.key),
				slog.String("delimiter", delim),
				slog.String("fragment", string(ch)),
			)
		}

		p.advance()
	}

	return nil
}

// requireClearToEOL enforces that only whitespace or a comment follows a
// closing delimiter on its line, consuming through the line terminator.
func (p *parser) requireClearToEOL(vc valueContext) error {
	for !p.eof() {
		ch := p.peek()

		if ch == '\n' {
			p.advance()

			return nil
		}

		if ch == '#' {
			p.skipComment()

			continue
		}

		if !unicode.IsSpace(ch) {
			return ErrAfterTerminator.WithPosition(p.position()).With(
				slog.String("key", vc.key),
				slog.String("terminator", vc.terminator),
				slog.String("fragment", string(ch)),
			)
		}

		p.advance()
	}

	return nil
}

// scanInterpolation resolves a ${NAME} reference against the variables
// accumulated so far. The spliced text is not re-scanned.
func (p *parser) scanInterpolation(vc valueContext) (string, error) {
	open := p.position()

	p.advanceN(2) // "${"

	var name strings.Builder

	for {
		if p.eof() {
			return "", ErrStopNotFound.WithPosition(open).With(
				slog.String("key", vc.key),
				slog.String("terminator", "}"),
			)
		}

		ch := p.peek()
		if ch == '}' {
			p.advance()

			break
		}

		name.WriteRune(ch)
		p.advance()
	}

	target := strings.TrimSpace(name.String())

	value, ok := p.vars[target]
	if !ok {
		return "", ErrUndefinedVar.WithPosition(open).With(
			slog.String("key", vc.key),
			slog.String("variable", "${"+target+"}"),
		)
	}

	return value, nil
}

// scanCommand resolves a $(cmd args...) substitution through the
// injected executor, splicing in the trimmed captured output.
func (p *parser) scanCommand(
	ctx context.Context,
	vc valueContext,
) (string, error) {
	open := p.position()

	p.advanceN(2) // "$("

	var body strings.Builder

	for {
		if p.eof() {
			return "", ErrStopNotFound.WithPosition(open).With(
				slog.String("key", vc.key),
				slog.String("terminator", ")"),
			)
		}

		ch := p.peek()
		if ch == ')' {
			p.advance()

			break
		}

		body.WriteRune(ch)
		p.advance()
	}

	fields := strings.Fields(body.String())
	if len(fields) == 0 {
		return "", ErrEmptyCommand.WithPosition(open).
			With(slog.String("key", vc.key))
	}

	if p.exec == nil {
		return "", ErrNoExecutor.With(slog.String("key", vc.key))
	}

	output, status, err := p.exec.Exec(ctx, fields[0], fields[1:]...)
	if err != nil {
		return "", ErrCommandFailed.Wrap(err).With(
			slog.String("key", vc.key),
			slog.String("command", fields[0]),
		)
	}

	if status != 0 {
		return "", ErrCommandExit.WithPosition(open).With(
			slog.String("key", vc.key),
			slog.String("command", fields[0]),
			slog.String("args", strings.Join(fields[1:], " ")),
			slog.Int("status", status),
		)
	}

	return strings.TrimSpace(output), nil
}

// scanEscape expands a backslash escape sequence. Unknown escapes drop
// the backslash and keep the character; a lone trailing backslash is
// kept literally.
func (p *parser) scanEscape(vc valueContext) (string, error) {
	pos := p.position()

	p.advance() // backslash

	if p.eof() {
		return `\`, nil
	}

	ch := p.peek()

	switch ch {
	case 'n':
		p.advance()

		return "\n", nil
	case 'r':
		p.advance()

		return "\r", nil
	case 't':
		p.advance()

		return "\t", nil
	case 'f':
		p.advance()

		return "\f", nil
	case 'b':
		p.advance()

		return "\b", nil
	case '"':
		p.advance()

		return `"`, nil
	case '\'':
		p.advance()

		return "'", nil
	case '\\':
		p.advance()

		return `\`, nil
	case 'u':
		p.advance()

		return p.scanUnicodeEscape(vc, pos)
	default:
		p.advance()

		return string(ch), nil
	}
}

// scanUnicodeEscape expects exactly 4 hexadecimal digits forming a
// Unicode codepoint, injected directly into the value.
func (p *parser) scanUnicodeEscape(
	vc valueContext,
	pos Position,
) (string, error) {
	var hex strings.Builder

	for range 4 {
		if p.eof() {
			return "", ErrInvalidUnicode.WithPosition(pos).With(
				slog.String("key", vc.key),
				slog.String("fragment", `\u`+hex.String()),
			)
		}

		ch := p.peek()
		if !isHexDigit(ch) {
			return "", ErrInvalidUnicode.WithPosition(pos).With(
				slog.String("key", vc.key),
				slog.String("fragment", `\u`+hex.String()+string(ch)),
			)
		}

		hex.WriteRune(ch)
		p.advance()
	}

	code, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil {
		return "", ErrInvalidUnicode.Wrap(err).WithPosition(pos).
			With(slog.String("key", vc.key))
	}

	return string(rune(code)), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'f') ||
		(r >= 'A' && r <= 'F')
}
