// Package logger builds the slog loggers used by the command-line tools.
package logger

import (
	"io"
	"log/slog"
)

type Logger struct {
	*slog.Logger
}

// NewLogger returns a text logger writing to w. Verbose mode enables debug
// output; otherwise info and above are shown.
func NewLogger(w io.Writer, verbose bool) *Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLogger(io.Discard, false)
}
