// Package prettylog installs charmbracelet/log as the handler behind
// log/slog.
package prettylog

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// SetupPrettyLogger makes a charm logger writing to writerForLogger the
// slog default and returns it. Debug output is enabled when debug is set.
func SetupPrettyLogger(writerForLogger io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	logHandler := log.NewWithOptions(
		writerForLogger,
		log.Options{
			Level:           level,
			ReportTimestamp: true,
			ReportCaller:    debug,
			Prefix:          "stitch",
		},
	)
	slog.SetDefault(slog.New(logHandler))

	return logHandler
}
