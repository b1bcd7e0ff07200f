package logger

import (
	"log/slog"
	"os"
)

var Hostname string

func init() {
	h, err := os.Hostname()
	if err != nil {
		Hostname = "unknown"
	} else {
		Hostname = h
	}
}

func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
