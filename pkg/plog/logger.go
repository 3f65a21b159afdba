// Package plog provides the ambient logging interface shared across the
// shape geometry core. It intentionally knows nothing about rendering —
// mesh registration and shape construction log through it the same way
// the rest of the module would if it grew a scene loader.
package plog

import (
	"fmt"
	"os"
)

// Logger is the minimal logging surface the module depends on.
type Logger interface {
	Printf(format string, args ...interface{})
}

// DefaultLogger writes to stdout.
type DefaultLogger struct{}

// NewDefaultLogger creates a logger that writes to stdout.
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// Printf implements Logger.
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// NopLogger discards everything written to it. Useful in tests and in
// callers that don't want mesh-registration diagnostics.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all output.
func NewNopLogger() Logger {
	return &NopLogger{}
}

// Printf implements Logger.
func (NopLogger) Printf(format string, args ...interface{}) {}
