// Package logger provides leveled logging for the repodoc CLI.
// Debug, Info and Section messages are printed to stderr only in verbose
// mode; warnings and errors are always printed. When a log file is attached
// every message is also appended to it with a timestamp.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    io.Writer
	now     = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetFile attaches a writer that receives every message regardless of
// verbosity. Pass nil to detach.
func SetFile(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	file = w
}

// OpenFile appends log messages to the file at path, creating it and its
// parent directory if needed. Closing the returned value detaches the file
// from the logger before closing it.
func OpenFile(path string) (io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetFile(f)
	return &attachedFile{f: f}, nil
}

type attachedFile struct {
	f *os.File
}

func (a *attachedFile) Close() error {
	mu.Lock()
	if file == io.Writer(a.f) {
		file = nil
	}
	mu.Unlock()
	return a.f.Close()
}

// write holds the full lock so lines from concurrent callers never interleave.
func write(level string, always bool, format string, args []any) {
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()
	if verbose || always {
		fmt.Fprintf(output, "[%s] %s\n", level, msg)
	}
	if file != nil {
		fmt.Fprintf(file, "%s [%s] %s\n", now().Format(time.RFC3339), level, msg)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write("DEBUG", false, format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
	if file != nil {
		fmt.Fprintf(file, "%s === %s ===\n", now().Format(time.RFC3339), name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write("INFO", false, format, args)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write("WARN", true, format, args)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write("ERROR", true, format, args)
}
