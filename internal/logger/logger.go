package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/Zaqui712/B-FO/internal/config"
)

const serviceName = "ordersync"

// New creates the service JSON logger at the configured level.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg.LogLevel)
}

// NewWithWriter builds the logger on top of w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", serviceName))
}
