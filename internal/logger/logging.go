// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// New creates a new default charm log on stderr that respects the global log level.
func New(prefix string) *log.Logger {
	level := log.GetLevel()
	return NewWithConfig(os.Stderr, prefix, level, false, level == log.DebugLevel, FormatterFor(os.Stderr))
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// FormatterFor picks the styled text formatter for terminals and logfmt otherwise,
// so piped output stays machine readable.
func FormatterFor(w io.Writer) log.Formatter {
	if IsTerminal(w) {
		return log.TextFormatter
	}
	return log.LogfmtFormatter
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Setup configures the global logger used by package level log calls.
func Setup(debug, quiet bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(FormatterFor(os.Stderr))
	switch {
	case debug:
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	case quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
		log.SetReportTimestamp(false)
	}
}
