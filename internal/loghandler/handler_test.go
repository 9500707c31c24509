package loghandler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleWritesTagPrefixAndOmitsTagAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))
	logger.Info("joined queue", "tag", "admission", "player_id", "alice")

	out := buf.String()
	if !strings.Contains(out, "[admission] joined queue") {
		t.Fatalf("expected tag prefix and message, got %q", out)
	}
	if !strings.Contains(out, "player_id=alice") {
		t.Fatalf("expected player_id attr, got %q", out)
	}
	if strings.Contains(out, "tag=admission") {
		t.Fatalf("expected tag attr to be omitted from key=value list, got %q", out)
	}
}

func TestHandleWithoutTag(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))
	logger.Info("no tag here")

	out := buf.String()
	if strings.Contains(out, "[") {
		t.Fatalf("expected no bracketed tag, got %q", out)
	}
	if !strings.Contains(out, "no tag here") {
		t.Fatalf("expected message present, got %q", out)
	}
}

func TestEnabledRespectsLevel(t *testing.T) {
	h := NewCompactHandler(&bytes.Buffer{}, slog.LevelWarn)
	if h.Enabled(nil, slog.LevelInfo) {
		t.Error("expected Info disabled when minimum level is Warn")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Error("expected Error enabled when minimum level is Warn")
	}
}
