package logging

import (
	"log/slog"
	"os"
)

// New returns the process-wide logger. Diagnostics stay server-side;
// handlers only ever send stable error codes to clients.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
