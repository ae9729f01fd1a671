// Package common holds the logging port shared by query handlers and the
// adapters that serve them. Handlers never see the concrete logger; the CLI
// and the HTTP server put one in the request context.
package common

import "context"

// Logger is the one logging call every layer uses. Levels are the upper-case
// names the logging package understands: DEBUG, INFO, WARNING, ERROR.
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// LoggerFunc lets a plain function act as a Logger
type LoggerFunc func(level, message string, metadata map[string]interface{})

func (f LoggerFunc) Log(level, message string, metadata map[string]interface{}) {
	f(level, message, metadata)
}

type loggerKey struct{}

// WithLogger returns ctx carrying logger
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the request logger. Queries run from tests or
// library callers often have none, so a missing logger discards output.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok && logger != nil {
		return logger
	}
	return discard
}

var discard = LoggerFunc(func(string, string, map[string]interface{}) {})
