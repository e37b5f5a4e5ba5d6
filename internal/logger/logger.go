// Package logger provides verbose logging for folio.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace loading, scheduling and find.
//
// Package functions log without a component. Named returns a logger whose
// lines carry a component tag, e.g. "[DEBUG] scheduler: render page 4".
// Error is always printed; the other levels only in verbose mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for log messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "DEBUG", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(false, "WARN", "", format, args...)
}

// Error prints a message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(true, "ERROR", "", format, args...)
}

// Logger tags every line with a component name.
type Logger struct {
	name string
}

// Named returns a logger for a component.
func Named(name string) *Logger {
	return &Logger{name: name}
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	logf(false, "DEBUG", l.name, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	logf(false, "INFO", l.name, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	logf(false, "WARN", l.name, format, args...)
}

// Error prints a message regardless of verbose mode.
func (l *Logger) Error(format string, args ...any) {
	logf(true, "ERROR", l.name, format, args...)
}

func logf(always bool, level, name, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if name != "" {
		fmt.Fprintf(output, "[%s] %s: %s\n", level, name, msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}
