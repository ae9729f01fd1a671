// Package logging provides the concrete logger behind common.Logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

// Logger adapts slog to the application's Log(level, message, metadata) port
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// New builds a logger from the logging config section.
// The caller must Close the logger when output is a file.
func New(cfg config.LoggingConfig) (*Logger, error) {
	var out io.Writer
	var closer io.Closer

	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging output is file but file_path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f
	default:
		out = os.Stderr
	}

	l := NewWithWriter(out, cfg)
	l.closer = closer
	return l, nil
}

// NewWithWriter builds a logger writing to w; output and file_path are ignored
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{slog: slog.New(handler)}
}

// ParseLevel maps config and call-site level names onto slog levels.
// Unknown names log at info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log writes one record; metadata keys are emitted in sorted order
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, metadata[k]))
	}

	l.slog.Log(context.Background(), ParseLevel(level), message, attrs...)
}

// Slog exposes the underlying slog logger (used for the HTTP request log)
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
