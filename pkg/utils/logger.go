// Package utils provides shared helpers with no domain knowledge.
package utils

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log severities from most to least verbose.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string to a LogLevel. Unrecognized values
// fall back to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger carries diagnostics out of the folding pipeline. Parse warnings
// flow through it; a NullLogger silences them without touching the fold.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// DefaultLogger writes timestamped lines to a single io.Writer. Writes
// are serialized; field loggers derived with WithField share the parent's
// mutex so interleaved workers stay line-atomic.
type DefaultLogger struct {
	mu     *sync.Mutex
	level  LogLevel
	out    io.Writer
	fields map[string]interface{}
}

// NewDefaultLogger returns a logger writing at or above the given level.
func NewDefaultLogger(level LogLevel, out io.Writer) *DefaultLogger {
	return &DefaultLogger{
		mu:    &sync.Mutex{},
		level: level,
		out:   out,
	}
}

// SetLevel adjusts the minimum level for subsequent messages.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *DefaultLogger) Debug(msg string, args ...interface{}) { l.emit(LevelDebug, msg, args) }
func (l *DefaultLogger) Info(msg string, args ...interface{})  { l.emit(LevelInfo, msg, args) }
func (l *DefaultLogger) Warn(msg string, args ...interface{})  { l.emit(LevelWarn, msg, args) }
func (l *DefaultLogger) Error(msg string, args ...interface{}) { l.emit(LevelError, msg, args) }

// WithField returns a derived logger that stamps key=value on every line.
func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a derived logger carrying the union of the parent's
// fields and the given ones. The parent is not modified.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLogger{mu: l.mu, level: l.level, out: l.out, fields: merged}
}

func (l *DefaultLogger) emit(level LogLevel, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString("] [")
	sb.WriteString(level.String())
	sb.WriteByte(']')

	if len(l.fields) > 0 {
		// Sorted so repeated runs produce comparable logs
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, l.fields[k])
		}
	}

	sb.WriteByte(' ')
	if len(args) > 0 {
		fmt.Fprintf(&sb, msg, args...)
	} else {
		sb.WriteString(msg)
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	_, _ = io.WriteString(l.out, sb.String())
	l.mu.Unlock()
}

// NullLogger drops everything. It backs the --quiet flag.
type NullLogger struct{}

func (NullLogger) Debug(string, ...interface{}) {}
func (NullLogger) Info(string, ...interface{})  {}
func (NullLogger) Warn(string, ...interface{})  {}
func (NullLogger) Error(string, ...interface{}) {}

func (n NullLogger) WithField(string, interface{}) Logger     { return n }
func (n NullLogger) WithFields(map[string]interface{}) Logger { return n }
