package env

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fireproofsocks/dotenvy/parser"
)

func TestLoad_Literal(t *testing.T) {
	e, err := Load(context.Background(), Literal("A=1\nB=2\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if e.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.Len())
	}

	if value, ok := e.Lookup("A"); !ok || value != "1" {
		t.Errorf("Lookup(A) = %q, %v", value, ok)
	}
}

func TestLoad_MergeOrder(t *testing.T) {
	e, err := Load(
		context.Background(),
		Literal("KEY=first\nONLY_FIRST=yes\n"),
		Literal("KEY=second\n"),
	)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("KEY"); value != "second" {
		t.Errorf("KEY = %q, want %q", value, "second")
	}

	if value, _ := e.Lookup("ONLY_FIRST"); value != "yes" {
		t.Errorf("ONLY_FIRST = %q, want %q", value, "yes")
	}
}

func TestLoad_CrossSourceInterpolation(t *testing.T) {
	// A later source may reference variables defined by an earlier one.
	e, err := Load(
		context.Background(),
		Literal("BASE=/opt\n"),
		Literal("BIN=${BASE}/bin\n"),
	)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("BIN"); value != "/opt/bin" {
		t.Errorf("BIN = %q, want %q", value, "/opt/bin")
	}
}

func TestLoad_FailingSourceAborts(t *testing.T) {
	_, err := Load(
		context.Background(),
		Literal("GOOD=1\n"),
		Literal("BAD LINE\n"),
	)
	if err == nil {
		t.Fatal("expected load error")
	}

	if !errors.Is(err, parser.ErrMissingAssign) {
		t.Errorf("error = %v, want %v", err, parser.ErrMissingAssign)
	}

	// The failing source is identified by index.
	if !strings.Contains(err.Error(), "source 1") {
		t.Errorf("error %q does not identify the failing source", err.Error())
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	err := os.WriteFile(path, []byte("FROM_FILE=yes\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	e, err := Load(context.Background(), File(path))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("FROM_FILE"); value != "yes" {
		t.Errorf("FROM_FILE = %q, want %q", value, "yes")
	}
}

func TestLoad_FileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")

	_, err := Load(context.Background(), File(missing))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestLoad_OptionalMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")

	e, err := Load(
		context.Background(),
		Optional(missing),
		Literal("KEY=value\n"),
	)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("KEY"); value != "value" {
		t.Errorf("KEY = %q, want %q", value, "value")
	}
}

func TestLoad_Reader(t *testing.T) {
	e, err := Load(
		context.Background(),
		Reader(strings.NewReader("KEY=value\n")),
	)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("KEY"); value != "value" {
		t.Errorf("KEY = %q, want %q", value, "value")
	}
}

func TestLoad_Values(t *testing.T) {
	source := map[string]string{"KEY": "value"}

	e, err := Load(context.Background(), Values(source))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	// Mutating the caller's map afterwards must not affect the Env.
	source["KEY"] = "changed"

	if value, _ := e.Lookup("KEY"); value != "value" {
		t.Errorf("KEY = %q, want %q", value, "value")
	}
}

func TestLoad_OSEnv(t *testing.T) {
	t.Setenv("DOTENVY_TEST_OSENV", "present")

	e, err := Load(context.Background(), OSEnv())
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("DOTENVY_TEST_OSENV"); value != "present" {
		t.Errorf("DOTENVY_TEST_OSENV = %q, want %q", value, "present")
	}
}

func TestLoader_SideEffect(t *testing.T) {
	key := "DOTENVY_TEST_SIDE_EFFECT"
	t.Setenv(key, "before")

	loader := NewLoader(WithSideEffect(true))

	_, err := loader.Load(context.Background(), Literal(key+"=after\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if got := os.Getenv(key); got != "after" {
		t.Errorf("%s = %q, want %q", key, got, "after")
	}
}

func TestLoader_Executor(t *testing.T) {
	exec := parser.ExecFunc(func(
		_ context.Context,
		name string,
		_ ...string,
	) (string, int, error) {
		return "from-" + name, 0, nil
	})

	loader := NewLoader(WithExecutor(exec), WithCache(false))

	e, err := loader.Load(context.Background(), Literal("KEY=$(tool)\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if value, _ := e.Lookup("KEY"); value != "from-tool" {
		t.Errorf("KEY = %q, want %q", value, "from-tool")
	}
}

func TestEnv_KeysAndEnviron(t *testing.T) {
	e, err := Load(context.Background(), Literal("B=2\nA=1\nC=3\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	wantKeys := []string{"A", "B", "C"}
	if keys := e.Keys(); !slices.Equal(keys, wantKeys) {
		t.Errorf("Keys() = %v, want %v", keys, wantKeys)
	}

	wantEnviron := []string{"A=1", "B=2", "C=3"}
	if environ := e.Environ(); !slices.Equal(environ, wantEnviron) {
		t.Errorf("Environ() = %v, want %v", environ, wantEnviron)
	}
}

func TestEnv_MapIsCopy(t *testing.T) {
	e, err := Load(context.Background(), Literal("KEY=value\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	m := e.Map()
	m["KEY"] = "mutated"

	if value, _ := e.Lookup("KEY"); value != "value" {
		t.Errorf("KEY = %q after mutating Map() copy", value)
	}
}
