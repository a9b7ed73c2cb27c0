package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestTrimPathDepth(t *testing.T) {
	path := filepath.Join("a", "b", "c", "d.go")
	if got := trimPathDepth(path, 3); got != filepath.Join("b", "c", "d.go") {
		t.Errorf("trimPathDepth() = %q", got)
	}
	if got := trimPathDepth("d.go", 3); got != "d.go" {
		t.Errorf("trimPathDepth() = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: " warn ", want: slog.LevelWarn},
		{input: "ERROR", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Setenv("ENV", "")
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "WARN")

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn record missing: %s", out)
	}
	if !strings.Contains(out, "caller=") || !strings.Contains(out, "logger_test.go") {
		t.Errorf("caller attribute missing: %s", out)
	}
}

func TestNewWithWriter_Production(t *testing.T) {
	t.Setenv("ENV", "production")
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "")

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered in production: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON output: %s", out)
	}
}
