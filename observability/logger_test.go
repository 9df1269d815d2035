package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_MessageTemplates(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, DebugLevel)

	logger.Info("Resolved {Package} at {Version}", "left-pad", "1.3.0")

	out := buf.String()
	if !strings.Contains(out, "left-pad") {
		t.Errorf("expected rendered package name in output, got: %s", out)
	}
	if !strings.Contains(out, "1.3.0") {
		t.Errorf("expected rendered version in output, got: %s", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, WarnLevel)

	logger.Debug("hidden debug message")
	logger.Info("hidden info message")
	logger.Warn("visible warning")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info suppressed at warn level, got: %s", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Errorf("expected warning in output, got: %s", out)
	}
}

func TestLogger_ForContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, InfoLevel)

	child := logger.ForContext("BatchID", "abc-123")
	if child == nil {
		t.Fatal("ForContext returned nil")
	}
	child.Info("batch started")
}

func TestNullLogger_Discards(t *testing.T) {
	logger := NewNullLogger()
	logger.Info("goes nowhere {X}", 42)
	logger.Error("also nowhere")

	if logger.ForContext("k", "v") == nil {
		t.Fatal("ForContext returned nil")
	}
}
