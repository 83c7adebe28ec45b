package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger at info level writing to stdout.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h)
}
