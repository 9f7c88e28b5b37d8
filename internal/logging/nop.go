package logging

import (
	"io"
	"log/slog"
)

// NewNop returns a Logger that discards everything. Useful in tests and as
// a default when a component is constructed without a logger.
func NewNop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
