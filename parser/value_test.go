package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestParse_Quoting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
	}{
		{
			name:  "double quoted",
			input: "KEY=\"hello world\"\n",
			key:   "KEY",
			want:  "hello world",
		},
		{
			name:  "single quoted",
			input: "KEY='hello world'\n",
			key:   "KEY",
			want:  "hello world",
		},
		{
			name:  "double quoted preserves whitespace",
			input: "KEY=\"  padded  \"\n",
			key:   "KEY",
			want:  "  padded  ",
		},
		{
			name:  "single quoted preserves whitespace",
			input: "KEY='  padded  '\n",
			key:   "KEY",
			want:  "  padded  ",
		},
		{
			name:  "empty double quoted",
			input: "KEY=\"\"\n",
			key:   "KEY",
			want:  "",
		},
		{
			name:  "empty single quoted",
			input: "KEY=''\n",
			key:   "KEY",
			want:  "",
		},
		{
			name:  "whitespace before opening quote",
			input: "KEY=   \"value\"\n",
			key:   "KEY",
			want:  "value",
		},
		{
			name:  "hash inside quotes is literal",
			input: "KEY=\"value # not a comment\"\n",
			key:   "KEY",
			want:  "value # not a comment",
		},
		{
			name:  "comment after closing quote",
			input: "KEY='value' # comment\n",
			key:   "KEY",
			want:  "value",
		},
		{
			name:  "quoted value spans newlines",
			input: "KEY='line1\nline2'\n",
			key:   "KEY",
			want:  "line1\nline2",
		},
		{
			name:  "single quotes inside double quotes",
			input: "KEY=\"it's fine\"\n",
			key:   "KEY",
			want:  "it's fine",
		},
		{
			name:  "closing quote at eof",
			input: "KEY='value'",
			key:   "KEY",
			want:  "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if vars[tt.key] != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, vars[tt.key], tt.want)
			}
		})
	}
}

func TestParse_Heredoc(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single quoted heredoc",
			input: "KEY='''\nline1\nline2\n'''\n",
			want:  "line1\nline2\n",
		},
		{
			name:  "double quoted heredoc",
			input: "KEY=\"\"\"\nline1\nline2\n\"\"\"\n",
			want:  "line1\nline2\n",
		},
		{
			name:  "empty heredoc",
			input: "KEY='''\n'''\n",
			want:  "",
		},
		{
			name:  "heredoc preserves inner quotes",
			input: "KEY='''\nsay \"hi\" to 'them'\n'''\n",
			want:  "say \"hi\" to 'them'\n",
		},
		{
			name:  "trailing whitespace after opener",
			input: "KEY='''   \nbody\n'''\n",
			want:  "body\n",
		},
		{
			name:  "comment after closing delimiter",
			input: "KEY='''\nbody\n''' # comment\n",
			want:  "body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if vars["KEY"] != tt.want {
				t.Errorf("KEY = %q, want %q", vars["KEY"], tt.want)
			}
		})
	}
}

func TestParse_QuotingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "unterminated double quote",
			input: "KEY=\"never closed\n",
			want:  ErrStopNotFound,
		},
		{
			name:  "unterminated single quote",
			input: "KEY='never closed",
			want:  ErrStopNotFound,
		},
		{
			name:  "unterminated heredoc",
			input: "KEY='''\nbody text\n",
			want:  ErrStopNotFound,
		},
		{
			name:  "text before opening quote",
			input: "KEY=oops \"value\"\n",
			want:  ErrQuotePrefix,
		},
		{
			name:  "text before heredoc",
			input: "KEY=oops '''\nbody\n'''\n",
			want:  ErrHeredocPrefix,
		},
		{
			name:  "text after heredoc opener",
			input: "KEY=''' oops\nbody\n'''\n",
			want:  ErrHeredocOpener,
		},
		{
			name:  "text after closing quote",
			input: "KEY='value' oops\n",
			want:  ErrAfterTerminator,
		},
		{
			name:  "text after closing heredoc",
			input: "KEY='''\nbody\n''' oops\n",
			want:  ErrAfterTerminator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected parse error")
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_Escapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "newline escape",
			input: "KEY=\"a\\nb\"\n",
			want:  "a\nb",
		},
		{
			name:  "tab and return",
			input: "KEY=\"a\\tb\\rc\"\n",
			want:  "a\tb\rc",
		},
		{
			name:  "form feed and backspace",
			input: "KEY=\"a\\fb\\bc\"\n",
			want:  "a\fb\bc",
		},
		{
			name:  "escaped double quote does not terminate",
			input: "KEY=\"say \\\"hi\\\"\"\n",
			want:  "say \"hi\"",
		},
		{
			name:  "escaped single quote",
			input: "KEY=\"don\\'t\"\n",
			want:  "don't",
		},
		{
			name:  "escaped backslash",
			input: "KEY=\"a\\\\b\"\n",
			want:  "a\\b",
		},
		{
			name:  "escaped dollar suppresses interpolation",
			input: "KEY=\"\\${NOPE}\"\n",
			want:  "${NOPE}",
		},
		{
			name:  "unknown escape drops backslash",
			input: "KEY=\"a\\zb\"\n",
			want:  "azb",
		},
		{
			name:  "unicode escape",
			input: "KEY=\"caf\\u00E9\"\n",
			want:  "café",
		},
		{
			name:  "unicode escape uppercase hex",
			input: "KEY=\"\\u262F\"\n",
			want:  "\u262f",
		},
		{
			name:  "no escapes in single quotes",
			input: "KEY='a\\nb'\n",
			want:  "a\\nb",
		},
		{
			name:  "lone trailing backslash kept literally",
			input: "KEY=a\\",
			want:  "a\\",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if vars["KEY"] != tt.want {
				t.Errorf("KEY = %q, want %q", vars["KEY"], tt.want)
			}
		})
	}
}

func TestParse_UnicodeEscapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "non-hex digit",
			input: "KEY=\"\\uZZZZ\"\n",
		},
		{
			name:  "too short at eof",
			input: "KEY=\"\\u12",
		},
		{
			name:  "too short before quote",
			input: "KEY=\"\\u12\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if !errors.Is(err, ErrInvalidUnicode) {
				t.Errorf("error = %v, want %v", err, ErrInvalidUnicode)
			}
		})
	}
}

func TestParse_Interpolation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
	}{
		{
			name:  "basic reference",
			input: "A=hello\nB=${A} world\n",
			key:   "B",
			want:  "hello world",
		},
		{
			name:  "reference inside double quotes",
			input: "A=hello\nB=\"${A} world\"\n",
			key:   "B",
			want:  "hello world",
		},
		{
			name:  "no interpolation in single quotes",
			input: "A=hello\nB='${A} world'\n",
			key:   "B",
			want:  "${A} world",
		},
		{
			name:  "chained references",
			input: "A=1\nB=${A}2\nC=${B}3\n",
			key:   "C",
			want:  "123",
		},
		{
			name:  "whitespace inside braces",
			input: "A=hello\nB=${ A }\n",
			key:   "B",
			want:  "hello",
		},
		{
			name:  "spliced text is not re-scanned",
			input: "A='${NOPE}'\nB=\"${A}\"\n",
			key:   "B",
			want:  "${NOPE}",
		},
		{
			name:  "empty value reference",
			input: "A=\nB=x${A}y\n",
			key:   "B",
			want:  "xy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if vars[tt.key] != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, vars[tt.key], tt.want)
			}
		})
	}
}

func TestParse_InterpolationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "undefined variable",
			input: "A=${UNDEFINED}\n",
			want:  ErrUndefinedVar,
		},
		{
			name:  "defined later is still undefined",
			input: "A=${B}\nB=value\n",
			want:  ErrUndefinedVar,
		},
		{
			name:  "unterminated reference",
			input: "A=${B\n",
			want:  ErrStopNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

// fakeExec records invocations and returns canned results.
type fakeExec struct {
	output string
	status int
	err    error
	calls  []string
}

func (f *fakeExec) Exec(
	_ context.Context,
	name string,
	args ...string,
) (string, int, error) {
	f.calls = append(f.calls, name)

	return f.output, f.status, f.err
}

func TestParse_CommandSubstitution(t *testing.T) {
	t.Run("output is spliced trimmed", func(t *testing.T) {
		fake := &fakeExec{output: "  abc123\n"}

		vars, err := Parse(
			context.Background(),
			"TOKEN=$(generate token)\n",
			WithExecutor(fake),
		)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if vars["TOKEN"] != "abc123" {
			t.Errorf("TOKEN = %q, want %q", vars["TOKEN"], "abc123")
		}

		if len(fake.calls) != 1 || fake.calls[0] != "generate" {
			t.Errorf("unexpected executor calls: %v", fake.calls)
		}
	})

	t.Run("inside double quotes", func(t *testing.T) {
		fake := &fakeExec{output: "xyz"}

		vars, err := Parse(
			context.Background(),
			"KEY=\"pre $(cmd) post\"\n",
			WithExecutor(fake),
		)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if vars["KEY"] != "pre xyz post" {
			t.Errorf("KEY = %q, want %q", vars["KEY"], "pre xyz post")
		}
	})

	t.Run("not honored in single quotes", func(t *testing.T) {
		fake := &fakeExec{output: "xyz"}

		vars, err := Parse(
			context.Background(),
			"KEY='$(cmd)'\n",
			WithExecutor(fake),
		)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if vars["KEY"] != "$(cmd)" {
			t.Errorf("KEY = %q, want %q", vars["KEY"], "$(cmd)")
		}

		if len(fake.calls) != 0 {
			t.Errorf("executor invoked for single-quoted value: %v", fake.calls)
		}
	})

	t.Run("empty command fails without invoking", func(t *testing.T) {
		fake := &fakeExec{}

		_, err := Parse(
			context.Background(),
			"KEY=$(   )\n",
			WithExecutor(fake),
		)
		if !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("error = %v, want %v", err, ErrEmptyCommand)
		}

		if len(fake.calls) != 0 {
			t.Errorf("executor invoked for empty command: %v", fake.calls)
		}
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		fake := &fakeExec{output: "partial", status: 3}

		_, err := Parse(
			context.Background(),
			"KEY=$(failing cmd)\n",
			WithExecutor(fake),
		)
		if !errors.Is(err, ErrCommandExit) {
			t.Errorf("error = %v, want %v", err, ErrCommandExit)
		}
	})

	t.Run("executor failure fails", func(t *testing.T) {
		fake := &fakeExec{err: fmt.Errorf("spawn failed")}

		_, err := Parse(
			context.Background(),
			"KEY=$(nope)\n",
			WithExecutor(fake),
		)
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("error = %v, want %v", err, ErrCommandFailed)
		}
	})

	t.Run("unterminated command", func(t *testing.T) {
		fake := &fakeExec{}

		_, err := Parse(
			context.Background(),
			"KEY=$(echo hi\n",
			WithExecutor(fake),
		)
		if !errors.Is(err, ErrStopNotFound) {
			t.Errorf("error = %v, want %v", err, ErrStopNotFound)
		}
	})

	t.Run("exec func adapter", func(t *testing.T) {
		exec := ExecFunc(func(
			_ context.Context,
			name string,
			args ...string,
		) (string, int, error) {
			return name + ":" + fmt.Sprint(len(args)), 0, nil
		})

		vars, err := Parse(
			context.Background(),
			"KEY=$(tool a b c)\n",
			WithExecutor(exec),
		)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if vars["KEY"] != "tool:3" {
			t.Errorf("KEY = %q, want %q", vars["KEY"], "tool:3")
		}
	})
}
