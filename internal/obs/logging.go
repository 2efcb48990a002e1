// Package obs holds observability helpers.
package obs

import (
	"log/slog"
	"os"
)

// InitLogger installs a JSON slog handler as the default logger, tagged with
// the service name.
func InitLogger(service string) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h).With("service", service))
}
