package logging

import (
	"log/slog"
	"os"
)

// New builds the JSON logger every service uses, tagged with the service
// name so the saga steps are distinguishable on a shared log stream.
func New(service string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h).With("service", service)
}
