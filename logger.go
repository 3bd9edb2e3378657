package main

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON slog.Logger on stdout tagged with the program name.
// Debug level also records the source location of each call.
func NewLogger(level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	return slog.New(h).With("app", "photo3d")
}
