package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("recompute blocked", zap.String("icms_rate", "150"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"icms_rate":"150"`) {
		t.Errorf("expected structured field in output: %s", out)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "verbose", Format: "json"}, &buf)

	logger.Debug("dropped")
	logger.Info("kept")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output for unknown level: %s", out)
	}
}
