// Package logging builds the slog loggers used by audiotag.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"

	"github.com/simonhull/audiotag/internal/config"
)

// New returns a slog.Logger writing to w through a charmbracelet/log
// handler configured by cfg.
func New(w io.Writer, cfg config.Logger) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "audiotag",
		Formatter:       formatter,
		Level:           level(cfg.Level),
	})
	return slog.New(handler)
}

func level(name string) log.Level {
	switch name {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
