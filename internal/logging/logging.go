// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Setup makes a charmbracelet/log handler writing to w the slog default and
// returns the logger. Unknown levels fall back to info.
func Setup(w io.Writer, level string) *slog.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "claude-accounts",
		ReportTimestamp: lvl == log.DebugLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
