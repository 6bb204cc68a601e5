package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/fireproofsocks/dotenvy/log"
	"github.com/fireproofsocks/dotenvy/parser"
)

// Env holds the merged result of loading one or more dotenv sources.
type Env struct {
	vars   map[string]string
	logger log.Logger
}

// Source supplies one increment of variables to a [Loader]. Sources are
// applied in order; each sees the variables accumulated so far as its
// interpolation seed.
type Source interface {
	load(ctx context.Context, l *Loader, seed map[string]string) (map[string]string, error)
}

// Loader merges dotenv sources in priority order.
type Loader struct {
	exec       parser.Executor
	logger     log.Logger
	sideEffect bool
	noCache    bool
}

// Option applies a configuration option to a Loader.
type Option func(*Loader)

// WithExecutor sets the command executor forwarded to the parser for
// $(...) substitution.
func WithExecutor(exec parser.Executor) Option {
	return func(l *Loader) { l.exec = exec }
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithSideEffect controls whether the final merged variables are also
// applied to the process environment via os.Setenv.
func WithSideEffect(enable bool) Option {
	return func(l *Loader) { l.sideEffect = enable }
}

// WithCache controls whether parsed sources are served from the
// process-wide content cache. Enabled by default.
func WithCache(enable bool) Option {
	return func(l *Loader) { l.noCache = !enable }
}

// NewLoader creates a Loader with the provided options applied.
func NewLoader(opts ...Option) *Loader {
	l := new(Loader)

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load merges the given sources in priority order using a default
// Loader. Later sources override earlier ones.
func Load(ctx context.Context, sources ...Source) (*Env, error) {
	return NewLoader().Load(ctx, sources...)
}

// Load merges the given sources in priority order. Each source is parsed
// with the variables accumulated from earlier sources as its seed, so
// ${NAME} references resolve across source boundaries. Later sources
// override earlier ones.
//
// A failing source aborts the whole load: no partial Env is returned.
func (l *Loader) Load(ctx context.Context, sources ...Source) (*Env, error) {
	acc := make(map[string]string)

	for i, src := range sources {
		vars, err := src.load(ctx, l, acc)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}

		maps.Copy(acc, vars)
	}

	l.logger.DebugContext(ctx, "sources loaded",
		slog.Int("source_count", len(sources)),
		slog.Int("variable_count", len(acc)),
	)

	if l.sideEffect {
		for key, value := range acc {
			err := os.Setenv(key, value)
			if err != nil {
				return nil, fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}

	return &Env{vars: acc, logger: l.logger}, nil
}

// parse runs contents through the parser with the accumulated seed,
// consulting the content cache first.
func (l *Loader) parse(
	ctx context.Context,
	contents string,
	seed map[string]string,
) (map[string]string, error) {
	if !l.noCache {
		if vars, ok := cacheLookup(contents, seed); ok {
			l.logger.TraceContext(ctx, "parse cache hit",
				slog.Int("content_len", len(contents)))

			return vars, nil
		}
	}

	opts := []parser.Option{
		parser.WithSeed(seed),
		parser.WithLogger(l.logger),
	}

	if l.exec != nil {
		opts = append(opts, parser.WithExecutor(l.exec))
	}

	vars, err := parser.Parse(ctx, contents, opts...)
	if err != nil {
		return nil, err
	}

	if !l.noCache {
		cacheStore(contents, seed, vars)
	}

	return vars, nil
}

// File returns a Source backed by a dotenv file. A missing file is an
// error; see [Optional] for the lenient variant.
func File(path string) Source { return fileSource{path: path} }

// Optional returns a Source backed by a dotenv file that is silently
// skipped when the file does not exist.
func Optional(path string) Source {
	return fileSource{path: path, optional: true}
}

type fileSource struct {
	path     string
	optional bool
}

func (s fileSource) load(
	ctx context.Context,
	l *Loader,
	seed map[string]string,
) (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if s.optional && errors.Is(err, os.ErrNotExist) {
			l.logger.DebugContext(ctx, "optional source skipped",
				slog.String("path", s.path))

			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	// Read through an async read-ahead buffer so I/O overlaps parsing
	// of earlier sources.
	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	vars, err := l.parse(ctx, string(data), seed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	return vars, nil
}

// Reader returns a Source that parses the contents of r.
func Reader(r io.Reader) Source { return readerSource{r: r} }

type readerSource struct {
	r io.Reader
}

func (s readerSource) load(
	ctx context.Context,
	l *Loader,
	seed map[string]string,
) (map[string]string, error) {
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, err
	}

	return l.parse(ctx, string(data), seed)
}

// Literal returns a Source that parses the given document text.
func Literal(contents string) Source { return literalSource(contents) }

type literalSource string

func (s literalSource) load(
	ctx context.Context,
	l *Loader,
	seed map[string]string,
) (map[string]string, error) {
	return l.parse(ctx, string(s), seed)
}

// Values returns a Source that merges the given variables directly,
// without parsing.
func Values(vars map[string]string) Source { return valuesSource(vars) }

type valuesSource map[string]string

func (s valuesSource) load(
	context.Context,
	*Loader,
	map[string]string,
) (map[string]string, error) {
	return maps.Clone(map[string]string(s)), nil
}

// OSEnv returns a Source that merges the current process environment.
func OSEnv() Source { return osEnvSource{} }

type osEnvSource struct{}

func (osEnvSource) load(
	context.Context,
	*Loader,
	map[string]string,
) (map[string]string, error) {
	environ := os.Environ()
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			vars[key] = value
		}
	}

	return vars, nil
}

// Map returns a copy of the merged variables.
func (e *Env) Map() map[string]string {
	return maps.Clone(e.vars)
}

// Len returns the number of merged variables.
func (e *Env) Len() int { return len(e.vars) }

// Lookup returns the raw value for key and whether it is present.
func (e *Env) Lookup(key string) (string, bool) {
	value, ok := e.vars[key]

	return value, ok
}

// Keys returns the variable names in sorted order.
func (e *Env) Keys() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Environ returns the merged variables as sorted "KEY=VALUE" entries,
// suitable for handing to os/exec.
func (e *Env) Environ() []string {
	entries := make([]string, 0, len(e.vars))

	for _, key := range e.Keys() {
		entries = append(entries, key+"="+e.vars[key])
	}

	return entries
}
