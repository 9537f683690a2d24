package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogFileName is the name of the log file created inside the log directory.
const LogFileName = "invisiboga.log"

var levels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// sink is the destination shared by a root Logger and all its children.
type sink struct {
	level *slog.LevelVar

	mu   sync.Mutex
	file *os.File // nil unless NewLogger opened one
}

// Logger writes JSON lines through log/slog. Children created with the
// With* methods carry extra attributes but share the root's destination
// and level. It is safe for concurrent use; the render thread, task
// workers and the UI thread all log through the same root.
type Logger struct {
	slog *slog.Logger
	sink *sink
}

// NewLogger creates a Logger that appends to {dir}/invisiboga.log, or
// writes to stderr when dir is empty. Unknown levels mean INFO.
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return newLogger(os.Stderr, nil, level), nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(f, f, level), nil
}

// NewWriterLogger creates a Logger that writes JSON lines to w.
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newLogger(w, nil, level)
}

func newLogger(w io.Writer, file *os.File, level string) *Logger {
	s := &sink{level: new(slog.LevelVar), file: file}
	s.level.Set(levels[ParseLevel(level)])
	return &Logger{
		slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.level})),
		sink: s,
	}
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}

// SetLevel changes the minimum level of this logger and every logger
// sharing its root.
func (l *Logger) SetLevel(level string) {
	l.sink.level.Set(levels[ParseLevel(level)])
}

// Level returns the current minimum level as one of the Level* constants.
func (l *Logger) Level() string {
	current := l.sink.level.Level()
	for name, lv := range levels {
		if lv == current {
			return name
		}
	}
	return LevelInfo
}

// WithSession returns a child Logger tagged with an engine session ID.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.With("session_id", sessionID)
}

// WithStage returns a child Logger tagged with a staged task name
// such as "engine-init" or "tracker-load".
func (l *Logger) WithStage(stage string) *Logger {
	return l.With("stage", stage)
}

// WithState returns a child Logger tagged with a lifecycle state name.
func (l *Logger) WithState(state string) *Logger {
	return l.With("state", state)
}

// With returns a child Logger with alternating key-value attributes.
// Pairs with a non-string key are dropped.
func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{slog: l.slog.With(attrs...), sink: l.sink}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) log(level slog.Level, msg string, args []any) {
	l.slog.Log(context.Background(), level, msg, args...)
}

// Close syncs and closes the log file opened by NewLogger. It is a no-op
// for other destinations and on repeated calls.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	f := l.sink.file
	if f == nil {
		return nil
	}
	l.sink.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// ParseLevel normalizes a user-provided level string to one of the
// Level* constants. Unknown values map to LevelInfo.
func ParseLevel(level string) string {
	upper := strings.ToUpper(strings.TrimSpace(level))
	if _, ok := levels[upper]; ok {
		return upper
	}
	return LevelInfo
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
