package env

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// parseCache stores resolved variable maps keyed by a digest of the
// document content and its interpolation seed. Re-sourcing identical
// content (the common case when several processes share one .env) skips
// the scanner entirely.
//
//nolint:gochecknoglobals
var parseCache sync.Map

// cacheKey digests the document content together with the canonical
// form of the seed, since interpolation makes the result seed-dependent.
func cacheKey(contents string, seed map[string]string) string {
	var sb strings.Builder

	sb.WriteString(contents)
	sb.WriteByte(0)

	for _, key := range slices.Sorted(maps.Keys(seed)) {
		sb.WriteString(key)
		sb.WriteByte(1)
		sb.WriteString(seed[key])
		sb.WriteByte(1)
	}

	return strconv.FormatUint(xxh3.HashString(sb.String()), 36)
}

// cacheable reports whether a document's result is deterministic. Any
// document that might perform command substitution is never cached; the
// check is conservative and may also exclude '$(' appearing inside
// single quotes.
func cacheable(contents string) bool {
	return !strings.Contains(contents, "$(")
}

func cacheLookup(contents string, seed map[string]string) (map[string]string, bool) {
	if !cacheable(contents) {
		return nil, false
	}

	value, ok := parseCache.Load(cacheKey(contents, seed))
	if !ok {
		return nil, false
	}

	vars, ok := value.(map[string]string)
	if !ok {
		return nil, false
	}

	return maps.Clone(vars), true
}

func cacheStore(contents string, seed, vars map[string]string) {
	if !cacheable(contents) {
		return
	}

	parseCache.Store(cacheKey(contents, seed), maps.Clone(vars))
}

// ClearCache removes all cached parse results. This is primarily useful
// for testing or when memory needs to be reclaimed.
func ClearCache() {
	parseCache = sync.Map{}
}
