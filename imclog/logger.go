// Package imclog provides the injectable logger interface used by the
// block scanner to report non-fatal conditions.
//
// Adapted from samcharles93-mantle/internal/logger: a thin interface over
// log/slog so callers can inject their own handler (or a no-op one in
// tests) without this module importing a concrete logging framework.
package imclog

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the logging interface accepted by block.Scanner (and by
// imcraw.Open/OpenBuffer, which pass it on). Only Warn is used by this module today — spec §7
// requires a warning for ErrUnknownNonCriticalKey and nothing else — but the
// full leveled interface is kept so a caller's existing logger (which
// already implements this shape) can be passed through directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	logger *slog.Logger
}

// New wraps an slog.Handler as a Logger.
func New(handler slog.Handler) Logger {
	return &slogLogger{logger: slog.New(handler)}
}

// Default returns a Logger writing text to os.Stderr at Info level.
func Default() Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// JSON returns a Logger writing JSON to w at the given level.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// noop discards everything. Used as the default when a caller passes a nil
// Logger, so scanner code never needs a nil check at each call site.
type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any) {}
func (noop) Warn(string, ...any) {}
func (noop) Error(string, ...any) {}
func (n noop) With(...any) Logger { return n }

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noop{} }

// OrDefault returns l unless it is nil, in which case it returns a no-op
// logger so callers never need a manual nil check.
func OrDefault(l Logger) Logger {
	if l == nil {
		return NoOp()
	}
	return l
}
