// Package debug provides context-based debug mode and slog setup.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// ParseLogFormat validates a --log-format value.
func ParseLogFormat(s string) (LogFormat, error) {
	switch LogFormat(s) {
	case "", LogText:
		return LogText, nil
	case LogJSON:
		return LogJSON, nil
	default:
		return LogText, fmt.Errorf("invalid log format: %q (use 'text' or 'json')", s)
	}
}

// SetupLogger installs the default slog logger writing to w (stderr when
// nil). Debug mode lowers the level from Warn to Debug.
func SetupLogger(debugEnabled bool, format LogFormat, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == LogJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
