package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the leveled sink every component logs through. Calls take a message
// followed by alternating key/value pairs.
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// Options controls where log lines go.
type Options struct {
	LogPath    string
	LogLevel   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewLogger writes to stderr and, when LogPath is set, to a rotating file. Stdout is
// left for record output.
func NewLogger(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if opts.LogPath != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotating)
		closer = rotating
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler), closer: closer}, nil
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewWriter logs at debug level into w. Tests use it to assert on output.
func NewWriter(w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{slog: slog.New(handler)}
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", s)
	}
}

// With returns a child logger that adds the given key/value pairs to every line.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{slog: l.slog.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.slog.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.slog.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.slog.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.slog.Error(msg, fields...)
}

// Close flushes the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
