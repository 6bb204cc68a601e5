// Package env layers source accumulation and typed access on top of the
// parser engine.
//
// [Load] merges any number of dotenv sources in priority order: each
// source is parsed with every previously resolved variable as its
// interpolation seed, and later sources override earlier ones. Sources
// may be required or optional files, readers, literal strings, direct
// maps, or the process environment.
//
// The resulting [Env] offers typed accessors (Int, Bool, Duration, and
// friends) that convert the raw string values and report conversion
// failures as errors rather than silent zero values.
//
// Identical document content parsed with an identical seed is served
// from a process-wide content-addressed cache, except for documents that
// may perform command substitution.
package env
