package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTextLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "coder", "warn")

	logger.Info("ignored")
	logger.Warn("tag_analysis_failed", "tag", "Color")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Fatalf("info record must be filtered: %s", out)
	}
	if !strings.Contains(out, "tag_analysis_failed") || !strings.Contains(out, "service=coder") {
		t.Fatalf("unexpected output: %s", out)
	}
}
