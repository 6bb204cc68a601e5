package parser

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fireproofsocks/dotenvy/log"
	"github.com/fireproofsocks/dotenvy/shell"
)

// varName is the exact pattern a variable name must match after the
// optional "export " prefix and surrounding whitespace are stripped.
var varName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseReader parses an environment definition document from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse scans contents in a single left-to-right pass and returns the
// mapping from variable name to fully resolved value.
//
// The returned map contains any seed variables supplied via [WithSeed]
// plus every pair committed from the document. On failure the whole
// parse is discarded and a descriptive *Error is returned.
func Parse(
	ctx context.Context,
	contents string,
	opts ...Option,
) (map[string]string, error) {
	p := &parser{
		input: []byte(contents),
		pos:   0,
		line:  1,
		col:   1,
		vars:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.exec == nil {
		p.exec = shell.New(shell.WithLogger(p.logger))
	}

	err := p.scanDocument(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("variable_count", len(p.vars)))

	return p.vars, nil
}

// parser holds the scanner state for one parse call.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	vars   map[string]string
	exec   Executor
	logger log.Logger
}

// scanDocument alternates between the two scanner phases, committing one
// key/value pair per round trip until input is exhausted.
func (p *parser) scanDocument(ctx context.Context) error {
	for {
		key, ok, err := p.scanKey(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		value, err := p.scanValue(ctx, key)
		if err != nil {
			return err
		}

		p.vars[key] = value

		p.logger.TraceContext(ctx, "variable committed",
			slog.String("key", key),
			slog.Int("value_len", len(value)),
		)
	}
}

// scanKey consumes characters until a valid variable-name boundary is
// found. It returns the validated name, or ok=false on clean end of
// input.
func (p *parser) scanKey(_ context.Context) (string, bool, error) {
	var acc strings.Builder

	for {
		if p.eof() {
			leftover := strings.TrimSpace(acc.String())
			if leftover == "" {
				return "", false, nil
			}

			return "", false, ErrMissingValue.WithPosition(p.position()).
				With(slog.String("key", leftover))
		}

		switch ch := p.peek(); ch {
		case '#':
			p.skipComment()

		case '=':
			p.advance()

			name, err := p.finishKey(acc.String())
			if err != nil {
				return "", false, err
			}

			return name, true, nil

		case '\n':
			if leftover := strings.TrimSpace(acc.String()); leftover != "" {
				return "", false, ErrMissingAssign.
					WithPosition(p.position()).
					With(slog.String("fragment", leftover))
			}

			acc.Reset()
			p.advance()

		default:
			acc.WriteRune(ch)
			p.advance()
		}
	}
}

// finishKey strips the optional "export " prefix and surrounding
// whitespace from a key candidate and validates the variable name.
func (p *parser) finishKey(raw string) (string, error) {
	name := strings.TrimSpace(raw)

	// Strip "export " only when followed by whitespace, so a variable
	// actually named "export" (or "exportFOO") survives intact.
	if rest, found := strings.CutPrefix(name, "export"); found {
		if rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			name = strings.TrimSpace(rest)
		}
	}

	if !varName.MatchString(name) {
		return "", ErrInvalidName.WithPosition(p.position()).
			With(slog.String("fragment", strings.TrimSpace(raw)))
	}

	return name, nil
}

// Cursor helpers

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

// hasPrefix reports whether the unconsumed input begins with s.
func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.input[p.pos:], []byte(s))
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// advanceN advances past n runes. Callers only use it for ASCII
// delimiters, where runes and bytes coincide.
func (p *parser) advanceN(n int) {
	for range n {
		p.advance()
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skipComment discards input through the end of the current line. The
// line terminator itself is left for the caller to handle.
func (p *parser) skipComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}
