package env

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Predefined errors (sentinel values).
var (
	// ErrUndefined is returned by typed accessors when the variable is
	// not present in the merged environment.
	ErrUndefined = errors.New("env: variable undefined")

	// ErrConversion is returned when a raw value cannot be converted to
	// the requested type.
	ErrConversion = errors.New("env: conversion failed")
)

// String returns the raw value for key, or ErrUndefined.
func (e *Env) String(key string) (string, error) {
	value, ok := e.vars[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndefined, key)
	}

	return value, nil
}

// StringDefault returns the raw value for key, or def when absent.
func (e *Env) StringDefault(key, def string) string {
	if value, ok := e.vars[key]; ok {
		return value
	}

	return def
}

// Int converts the value for key to an int.
func (e *Env) Int(key string) (int, error) {
	raw, err := e.String(key)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, conversionError(key, raw, "int")
	}

	return value, nil
}

// IntDefault converts the value for key to an int, returning def when
// the variable is absent. A present but unconvertible value is still an
// error.
func (e *Env) IntDefault(key string, def int) (int, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Int(key)
}

// Int64 converts the value for key to an int64.
func (e *Env) Int64(key string) (int64, error) {
	raw, err := e.String(key)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, conversionError(key, raw, "int64")
	}

	return value, nil
}

// Int64Default converts the value for key to an int64, returning def
// when the variable is absent.
func (e *Env) Int64Default(key string, def int64) (int64, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Int64(key)
}

// Uint64 converts the value for key to a uint64.
func (e *Env) Uint64(key string) (uint64, error) {
	raw, err := e.String(key)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, conversionError(key, raw, "uint64")
	}

	return value, nil
}

// Uint64Default converts the value for key to a uint64, returning def
// when the variable is absent.
func (e *Env) Uint64Default(key string, def uint64) (uint64, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Uint64(key)
}

// Float64 converts the value for key to a float64.
func (e *Env) Float64(key string) (float64, error) {
	raw, err := e.String(key)
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, conversionError(key, raw, "float64")
	}

	return value, nil
}

// Float64Default converts the value for key to a float64, returning def
// when the variable is absent.
func (e *Env) Float64Default(key string, def float64) (float64, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Float64(key)
}

// Bool converts the value for key to a bool. Accepted spellings are
// those of strconv.ParseBool plus "yes"/"no" and "on"/"off".
func (e *Env) Bool(key string) (bool, error) {
	raw, err := e.String(key)
	if err != nil {
		return false, err
	}

	trimmed := strings.TrimSpace(raw)

	switch strings.ToLower(trimmed) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}

	value, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false, conversionError(key, raw, "bool")
	}

	return value, nil
}

// BoolDefault converts the value for key to a bool, returning def when
// the variable is absent.
func (e *Env) BoolDefault(key string, def bool) (bool, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Bool(key)
}

// Duration converts the value for key using time.ParseDuration.
func (e *Env) Duration(key string) (time.Duration, error) {
	raw, err := e.String(key)
	if err != nil {
		return 0, err
	}

	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, conversionError(key, raw, "duration")
	}

	return value, nil
}

// DurationDefault converts the value for key using time.ParseDuration,
// returning def when the variable is absent.
func (e *Env) DurationDefault(
	key string,
	def time.Duration,
) (time.Duration, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.Duration(key)
}

// URL parses the value for key as an absolute URL.
func (e *Env) URL(key string) (*url.URL, error) {
	raw, err := e.String(key)
	if err != nil {
		return nil, err
	}

	value, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !value.IsAbs() {
		return nil, conversionError(key, raw, "url")
	}

	return value, nil
}

// URLDefault parses the value for key as an absolute URL, returning def
// when the variable is absent.
func (e *Env) URLDefault(key string, def *url.URL) (*url.URL, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}

	return e.URL(key)
}

func conversionError(key, raw, kind string) error {
	return fmt.Errorf("%w: %s=%q as %s", ErrConversion, key, raw, kind)
}
