package shell

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestShell_Disabled(t *testing.T) {
	s := Disabled()

	_, status, err := s.Exec(context.Background(), "echo", "hi")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want %v", err, ErrDisabled)
	}

	if status != -1 {
		t.Errorf("status = %d, want -1", status)
	}
}

func TestShell_AllowList(t *testing.T) {
	s := New(WithAllow("date", "hostname"))

	_, _, err := s.Exec(context.Background(), "rm", "-rf", "/")
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("error = %v, want %v", err, ErrNotAllowed)
	}
}

func TestShell_EmptyAllowListUnrestricted(t *testing.T) {
	s := New(WithAllow())

	// With no allow-list entries, commands are only rejected by the OS,
	// not by the shell itself.
	_, _, err := s.Exec(context.Background(), "definitely-not-a-command-xyz")
	if errors.Is(err, ErrNotAllowed) {
		t.Errorf("empty allow-list rejected command: %v", err)
	}
}

func TestShell_Exec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX echo")
	}

	s := New()

	out, status, err := s.Exec(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}

	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}

	if strings.TrimSpace(out) != "hello" {
		t.Errorf("output = %q, want %q", out, "hello")
	}
}

func TestShell_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX false")
	}

	s := New()

	_, status, err := s.Exec(context.Background(), "false")
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}

	if status == 0 {
		t.Error("expected non-zero status")
	}
}

func TestShell_CommandNotFound(t *testing.T) {
	s := New()

	_, status, err := s.Exec(
		context.Background(),
		"definitely-not-a-command-xyz",
	)
	if err == nil {
		t.Fatal("expected start failure")
	}

	if status != -1 {
		t.Errorf("status = %d, want -1", status)
	}
}

func TestShell_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX sleep")
	}

	s := New(WithTimeout(50 * time.Millisecond))

	start := time.Now()

	_, _, err := s.Exec(context.Background(), "sleep", "10")
	if err == nil {
		t.Fatal("expected timeout failure")
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}
