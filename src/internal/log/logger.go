package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu          sync.RWMutex
	verbose     = false
	disableLogs = false
	forceStdErr = false
	format      = FormatConsole

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	outLogger zerolog.Logger
	errLogger zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	rebuild()
}

// rebuild recreates the stdout/stderr loggers from the current settings.
// Callers must hold mu for writing (or be in init).
func rebuild() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if disableLogs {
		level = zerolog.Disabled
	}

	outLogger = newLogger(stdout, level)
	errLogger = newLogger(stderr, level)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminal(w),
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// SetVerbose sets the logging verbosity. If true, all log levels are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
	rebuild()
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return disableLogs
}

// SetForceStdErr sends every level to stderr. Used by commands whose stdout
// is machine-readable output.
func SetForceStdErr(v bool) {
	mu.Lock()
	defer mu.Unlock()
	forceStdErr = v
}

// SetFormat switches between human-readable console output and JSON lines.
func SetFormat(f string) error {
	if f != FormatConsole && f != FormatJSON {
		return fmt.Errorf("unknown log format %q (expected %q or %q)", f, FormatConsole, FormatJSON)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
	return nil
}

// SetOutput redirects the stdout and stderr streams. Tests use it to capture output.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout = out
	stderr = errOut
	rebuild()
}

// With returns a structured logger tagged with a component name.
func With(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return outLogger.With().Str("component", component).Logger()
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	logMessage(zerolog.DebugLevel, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(zerolog.InfoLevel, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(zerolog.WarnLevel, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(zerolog.ErrorLevel, format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	logMessage(zerolog.ErrorLevel, format, args...)
	os.Exit(1)
}

// logMessage writes a message with the specified level. Errors always go to
// stderr, everything else to stdout unless forceStdErr is set.
func logMessage(level zerolog.Level, format string, args ...interface{}) {
	mu.RLock()
	logger := outLogger
	if forceStdErr || level >= zerolog.ErrorLevel {
		logger = errLogger
	}
	mu.RUnlock()

	logger.WithLevel(level).Msgf(format, args...)
}
