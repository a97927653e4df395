package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Package log wraps the standard library logger with named component
// loggers. Components in bsearch are the long-lived subsystems: "engine",
// "session", "web", "live", "indexer". Debug output can be enabled globally
// or per component.
//
// Usage:
//
//	l := log.ForComponent("engine")
//	l.Infof("indexed %d documents", n)
//	l.Debugf("token table size: %d", size) // only with debug enabled

// Logger is a named logger with level helpers.
type Logger struct {
	name string
	std  *log.Logger
}

// writerHolder wraps an io.Writer so atomic.Value always stores the same
// concrete type when the destination changes (stderr in production, a
// bytes.Buffer in tests).
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug atomic.Bool

	// componentDebug stores per-component debug overrides.
	componentDebug sync.Map // map[string]*atomic.Bool

	// loggers caches created named loggers.
	loggers sync.Map // map[string]*Logger

	outputWriter atomic.Value // writerHolder
)

func init() {
	outputWriter.Store(writerHolder{w: os.Stderr})
}

// ForComponent returns (and memoizes) the named logger for a component.
// The name should be a stable slug.
func ForComponent(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	current := outputWriter.Load().(writerHolder).w
	std := log.New(current, "", log.LstdFlags|log.Lmicroseconds)
	logger := &Logger{name: name, std: std}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

// SetGlobalDebug enables or disables debug logging globally.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// EnableDebugFor enables debug logging for a single component.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := componentDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor disables debug logging for a single component.
func DisableDebugFor(name string) {
	if name == "" {
		return
	}
	if val, ok := componentDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug is active for the given component,
// either globally or via a per-component override.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := componentDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput sets the output writer for all current and future loggers.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputWriter.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

func (l *Logger) prefix() string {
	return "[" + l.name + "]"
}

func (l *Logger) logInternal(level string, msg string) {
	l.std.Println(level + " " + l.prefix() + " " + msg)
}

// Infof logs an informational message with fmt.Sprintf semantics.
func (l *Logger) Infof(format string, args ...any) {
	l.logInternal(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.logInternal(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.logInternal(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message if debug is enabled for this component.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.logInternal(LevelDebug, fmt.Sprintf(format, args...))
}

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)
