package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testTime() time.Time {
	return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
}

func TestMake_JSONOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatJSON),
		WithPretty(false),
		WithLevel(LevelDebug),
	)

	logger.Info("something happened", slog.String("key", "value"))

	var record map[string]any

	err := json.Unmarshal(buf.Bytes(), &record)
	if err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if record["msg"] != "something happened" {
		t.Errorf("msg = %v, want %q", record["msg"], "something happened")
	}

	if record["key"] != "value" {
		t.Errorf("key = %v, want %q", record["key"], "value")
	}
}

func TestMake_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(false),
		WithLevel(LevelWarn),
	)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	out := buf.String()

	if strings.Contains(out, "dropped") {
		t.Errorf("below-threshold messages were logged:\n%s", out)
	}

	if !strings.Contains(out, "kept") {
		t.Errorf("at-threshold message was not logged:\n%s", out)
	}
}

func TestMake_TraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(false),
		WithLevel(LevelTrace),
	)

	logger.Trace("very detailed")

	out := buf.String()

	// Trace records are labeled TRACE, not slog's DEBUG-4.
	if !strings.Contains(out, "TRACE") {
		t.Errorf("trace record not labeled TRACE:\n%s", out)
	}

	if strings.Contains(out, "DEBUG-4") {
		t.Errorf("trace record uses raw slog level:\n%s", out)
	}
}

func TestZeroLoggerDiscards(t *testing.T) {
	var logger Logger

	// A zero-value Logger must be safe to use.
	logger.Info("into the void")
	logger.Error("also into the void")
}

func TestWrap_OverridesLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(false),
		WithLevel(LevelError),
	)

	verbose := logger.Wrap(WithLevel(LevelDebug))

	verbose.Debug("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("wrapped logger dropped message:\n%s", buf.String())
	}

	if verbose.Level() != LevelDebug {
		t.Errorf("Level() = %v, want %v", verbose.Level(), LevelDebug)
	}
}

func TestWith_AttachesAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(false),
	).With(slog.String("component", "parser"))

	logger.Info("attributed")

	if !strings.Contains(buf.String(), "component=parser") {
		t.Errorf("attached attr missing:\n%s", buf.String())
	}
}

func TestWithTimeLayout_Disabled(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText),
		WithPretty(false),
		WithTimeLayout(""),
	)

	logger.Info("timeless")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("timestamp present with layout disabled:\n%s", buf.String())
	}
}
