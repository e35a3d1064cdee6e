// Package cli implements the image-loader-mcp command-line interface.
//
// Running the binary without a subcommand starts the MCP server on stdio.
// The key and transform subcommands expose the same loader from a shell,
// which is handy for priming a file or Redis cache and for checking keys.
//
// # Logging
//
// Logs always go to stderr; stdout carries the protocol or command output.
// --verbose (-v) forces debug level, otherwise log_level from the config
// file or IMAGE_LOADER_LOG_LEVEL applies.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "image-loader",
	})
}

// parseLevel maps a configured level name to a log.Level, defaulting to warn.
func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.TrimSpace(s))
	if err != nil || s == "" {
		return log.WarnLevel
	}
	return lvl
}
