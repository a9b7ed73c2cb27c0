// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// callerHandler adds a short "caller" attribute to every record.
type callerHandler struct {
	slog.Handler
}

// trimPathDepth keeps only the last n segments of the given path.
// Example: trimPathDepth("a/b/c/d.go", 3) => "b/c/d.go"
func trimPathDepth(path string, depth int) string {
	parts := strings.Split(path, string(os.PathSeparator))
	if len(parts) <= depth {
		return path
	}
	return strings.Join(parts[len(parts)-depth:], string(os.PathSeparator))
}

func (h *callerHandler) Handle(ctx context.Context, r slog.Record) error {
	caller := "unknown"
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		caller = fmt.Sprintf("%s:%d", trimPathDepth(frame.File, 3), frame.Line)
	}
	r.AddAttrs(slog.String("caller", caller))
	return h.Handler.Handle(ctx, r)
}

func (h *callerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &callerHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *callerHandler) WithGroup(name string) slog.Handler {
	return &callerHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func production() bool {
	return os.Getenv("ENV") == "production"
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if production() {
		return &callerHandler{Handler: slog.NewJSONHandler(w, opts)}
	}
	return &callerHandler{Handler: slog.NewTextHandler(w, opts)}
}

// New initializes the default logger for the application.
// It uses text format and DEBUG level for development, JSON and INFO for production.
func New() *slog.Logger {
	return NewWithLevel("")
}

// NewWithLevel is New with an explicit level. An empty or invalid level
// falls back to the environment default.
func NewWithLevel(level string) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is NewWithLevel writing to w.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelDebug
	if production() {
		lvl = slog.LevelInfo
	}
	invalid := false
	if level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			invalid = true
		} else {
			lvl = parsed
		}
	}
	slog.SetDefault(slog.New(newHandler(w, lvl)))
	if invalid {
		slog.Warn("Ignoring invalid log level", "level", level, "using", lvl.String())
	}
	return slog.Default()
}
