// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// L is the global logger instance. It discards all output until Init is
// called, so library code can log unconditionally.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Destination; required when Enabled
	Level   slog.Level // Minimum log level
	JSON    bool       // JSON lines instead of colored text
	NoColor bool       // Disable ANSI colors in text mode
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) {
	if !opts.Enabled || opts.Output == nil {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{Level: opts.Level})
	} else {
		h = tint.NewHandler(opts.Output, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor,
		})
	}
	L = slog.New(h)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
