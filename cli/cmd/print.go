package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// Print resolves the definition files and writes the merged environment to
// stdout in the chosen format.
type Print struct {
	Format string `default:"env" enum:"env,json,yaml" help:"Output format"                            short:"o"`
	Export bool   `                                   help:"Prefix definitions with 'export' (env format only)"`
}

// Run executes the print command.
func (p *Print) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	e, err := Load(ctx)
	if err != nil {
		return err
	}

	switch p.Format {
	case "env":
		return p.writeEnv(os.Stdout, e.Keys(), e.Map())

	case "json":
		data, err := json.MarshalIndent(e.Map(), "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(os.Stdout, string(data))

		return err

	case "yaml":
		data, err := yaml.Marshal(e.Map())
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = os.Stdout.Write(data)

		return err
	}

	return ErrUnknownFormat.Wrap(fmt.Errorf("%q", p.Format))
}

// writeEnv renders the environment in definition-file syntax. The output
// parses back to the same variables.
func (p *Print) writeEnv(
	w io.Writer,
	keys []string,
	vars map[string]string,
) error {
	prefix := ""
	if p.Export {
		prefix = "export "
	}

	for _, key := range keys {
		_, err := fmt.Fprintf(w, "%s%s=%s\n", prefix, key, quote(vars[key]))
		if err != nil {
			return err
		}
	}

	return nil
}

// bareValue matches values that survive a round trip without quoting: no
// whitespace, no quote or escape characters, nothing that opens a comment
// or a substitution.
var bareValue = regexp.MustCompile(`^[A-Za-z0-9_./:@%+,=-]+$`)

// quote renders value so that parsing it back yields value exactly.
// Bare-safe values are written verbatim, everything else is double-quoted
// with control characters, quotes, backslashes, and dollar signs escaped.
func quote(value string) string {
	if bareValue.MatchString(value) {
		return value
	}

	var b strings.Builder

	b.Grow(len(value) + 2)
	b.WriteByte('"')

	for _, r := range value {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '\b':
			b.WriteString(`\b`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}
